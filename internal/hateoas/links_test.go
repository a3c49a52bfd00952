package hateoas

import (
	"crypto/tls"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/bookmarks/internal/store"
)

func bookmark(username string, id int64, uri string) *store.Bookmark {
	return &store.Bookmark{ID: id, URI: uri, Account: &store.Account{ID: 1, Username: username}}
}

func TestLinker_PathTemplates(t *testing.T) {
	l := MustLinker(PathTemplates)
	b := bookmark("making", 7, "http://bookmark.com/1/making")

	self, err := l.Self("", b)
	require.NoError(t, err)
	assert.Equal(t, "/making/bookmarks/7", self)

	collection, err := l.Collection("", "making")
	require.NoError(t, err)
	assert.Equal(t, "/making/bookmarks", collection)
}

func TestLinker_ForBookmarkOrderAndRels(t *testing.T) {
	l := MustLinker(PathTemplates)
	b := bookmark("kis", 3, "http://bookmark.com/2/kis")

	links, err := l.ForBookmark("http://localhost:8080", b)
	require.NoError(t, err)
	assert.Equal(t, Links{
		{Rel: RelBookmarkURI, Href: "http://bookmark.com/2/kis"},
		{Rel: RelBookmarks, Href: "http://localhost:8080/kis/bookmarks"},
		{Rel: RelSelf, Href: "http://localhost:8080/kis/bookmarks/3"},
	}, links)

	self, ok := links.Get(RelSelf)
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080/kis/bookmarks/3", self.Href)

	_, ok = links.Get("missing")
	assert.False(t, ok)
}

func TestLinker_PrincipalTemplatesOmitOwner(t *testing.T) {
	l := MustLinker(PrincipalTemplates)
	links, err := l.ForBookmark("", bookmark("making", 7, "http://x"))
	require.NoError(t, err)

	collection, _ := links.Get(RelBookmarks)
	self, _ := links.Get(RelSelf)
	assert.Equal(t, "/bookmarks", collection.Href)
	assert.Equal(t, "/bookmarks/7", self.Href)
}

func TestLinker_EscapesUsername(t *testing.T) {
	l := MustLinker(PathTemplates)
	href, err := l.Collection("", "jane doe/x")
	require.NoError(t, err)
	assert.Equal(t, "/jane%20doe%2Fx/bookmarks", href)
}

func TestNewLinker_BadTemplate(t *testing.T) {
	_, err := NewLinker(Templates{Collection: "/{user", Item: "/x"})
	assert.Error(t, err)
}

func TestRequestBase(t *testing.T) {
	r := httptest.NewRequest("GET", "/kis/bookmarks", nil)
	r.Host = "bookmarks.local:8080"
	assert.Equal(t, "http://bookmarks.local:8080", RequestBase(r, ""))
	assert.Equal(t, "https://configured.example.com", RequestBase(r, "https://configured.example.com/"))

	r.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	assert.Equal(t, "https://bookmarks.local:8080", RequestBase(r, ""))

	tlsReq := httptest.NewRequest("GET", "/", nil)
	tlsReq.Host = "secure.local"
	tlsReq.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://secure.local", RequestBase(tlsReq, ""))
}

func TestResource_JSONShape(t *testing.T) {
	type body struct {
		ID  int64  `json:"id"`
		URI string `json:"uri"`
	}
	res := Resource[body]{
		Name:    "bookmark",
		Content: body{ID: 1, URI: "http://x"},
		Links:   Links{{Rel: RelSelf, Href: "/kis/bookmarks/1"}},
	}
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookmark":{"id":1,"uri":"http://x"},"links":[{"rel":"self","href":"/kis/bookmarks/1"}]}`, string(out))

	empty, err := json.Marshal(Resource[body]{Name: "bookmark"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookmark":{"id":0,"uri":""},"links":[]}`, string(empty))
}

func TestNewResources_NoNulls(t *testing.T) {
	out, err := json.Marshal(NewResources[int](nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"links":[],"content":[]}`, string(out))
}

func TestWriteVndError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteVndError(rec, 404, "could not find user 'nonexistent'.")

	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, ContentTypeVndError, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"logref":"error","message":"could not find user 'nonexistent'.","links":[]}]`, rec.Body.String())
}
