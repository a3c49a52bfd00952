package datarest

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/jtacoma/uritemplates"

	"github.com/joestump/bookmarks/internal/hateoas"
	"github.com/joestump/bookmarks/internal/store"
)

// ContentTypeHAL is the media type of every successful response.
const ContentTypeHAL = "application/hal+json"

const (
	defaultPageSize = 20
	maxPageSize     = 200

	// maxPageNumber keeps Number*Size, the row offset, within an int.
	maxPageNumber = math.MaxInt / maxPageSize
)

var (
	collectionTemplate  = mustParse("{+base}/{collection}")
	itemTemplate        = mustParse("{+base}/{collection}/{id}")
	associationTemplate = mustParse("{+base}/{collection}/{id}/{association}")
	searchTemplate      = mustParse("{+base}/{collection}/search")
	finderTemplate      = mustParse("{+base}/{collection}/search/{finder}")
	pageTemplate        = mustParse("{+href}{?page,size}")
	usernameTemplate    = mustParse("{+href}{?username}")
)

func mustParse(tmpl string) *uritemplates.UriTemplate {
	t, err := uritemplates.Parse(tmpl)
	if err != nil {
		panic(err)
	}
	return t
}

// expand fills t with string values. String expansion cannot fail, so an
// error here is a broken template and panics like mustParse.
func expand(t *uritemplates.UriTemplate, vars map[string]interface{}) string {
	s, err := t.Expand(vars)
	if err != nil {
		panic(err)
	}
	return s
}

func collectionHref(base, collection string) string {
	return expand(collectionTemplate, map[string]interface{}{"base": base, "collection": collection})
}

func itemHref(base, collection string, id int64) string {
	return expand(itemTemplate, map[string]interface{}{
		"base": base, "collection": collection, "id": strconv.FormatInt(id, 10),
	})
}

func associationHref(base, collection string, id int64, association string) string {
	return expand(associationTemplate, map[string]interface{}{
		"base": base, "collection": collection, "id": strconv.FormatInt(id, 10), "association": association,
	})
}

func searchHref(base, collection string) string {
	return expand(searchTemplate, map[string]interface{}{"base": base, "collection": collection})
}

func finderHref(base, collection, finder string) string {
	return expand(finderTemplate, map[string]interface{}{"base": base, "collection": collection, "finder": finder})
}

// pagedTemplate and usernameQuery are handed to clients unexpanded.
const (
	pagedTemplate = "{?page,size}"
	usernameQuery = "{?username}"
)

func pageHref(href string, number, size int) string {
	return expand(pageTemplate, map[string]interface{}{
		"href": href, "page": strconv.Itoa(number), "size": strconv.Itoa(size),
	})
}

func usernameHref(href, username string) string {
	return expand(usernameTemplate, map[string]interface{}{"href": href, "username": username})
}

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Links map[string]Link

// PageMeta describes the window a paged collection holds.
type PageMeta struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// Collection is a HAL collection. Embedded holds a single relation.
type Collection struct {
	Embedded map[string]any `json:"_embedded"`
	Links    Links          `json:"_links"`
	Page     *PageMeta      `json:"page,omitempty"`
}

func newCollection[T any](rel string, items []T, links Links) Collection {
	if items == nil {
		items = []T{}
	}
	return Collection{Embedded: map[string]any{rel: items}, Links: links}
}

// AccountModel is an account as exposed over HAL. The password is never
// exposed.
type AccountModel struct {
	Username string `json:"username"`
	Links    Links  `json:"_links"`
}

// BookmarkModel is a bookmark as exposed over HAL. Its owner is reachable
// through the account link only.
type BookmarkModel struct {
	URI         string `json:"uri"`
	Description string `json:"description"`
	Links       Links  `json:"_links"`
}

func toAccountModel(base string, a *store.Account) AccountModel {
	self := itemHref(base, "accounts", a.ID)
	return AccountModel{
		Username: a.Username,
		Links: Links{
			"self":      {Href: self},
			"account":   {Href: self},
			"bookmarks": {Href: associationHref(base, "accounts", a.ID, "bookmarks")},
		},
	}
}

func toBookmarkModel(base string, b *store.Bookmark) BookmarkModel {
	self := itemHref(base, "bookmarks", b.ID)
	return BookmarkModel{
		URI:         b.URI,
		Description: b.Description,
		Links: Links{
			"self":     {Href: self},
			"bookmark": {Href: self},
			"account":  {Href: associationHref(base, "bookmarks", b.ID, "account")},
		},
	}
}

// pageRequest is a parsed ?page=&size= pair. Values that do not parse fall
// back to the defaults, and both number and size are capped.
type pageRequest struct {
	Number int
	Size   int
}

func parsePage(r *http.Request) pageRequest {
	p := pageRequest{Number: 0, Size: defaultPageSize}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n >= 0 {
		p.Number = min(n, maxPageNumber)
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && s > 0 {
		p.Size = s
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p pageRequest) store() store.Page {
	return store.Page{Limit: p.Size, Offset: p.Number * p.Size}
}

// meta builds page metadata and the first/prev/next/last navigation links
// for a collection rooted at href.
func (p pageRequest) meta(href string, total int, links Links) *PageMeta {
	pages := (total + p.Size - 1) / p.Size
	at := func(n int) Link {
		return Link{Href: pageHref(href, n, p.Size)}
	}
	links["self"] = at(p.Number)
	if pages > 1 {
		links["first"] = at(0)
		links["last"] = at(pages - 1)
	}
	if p.Number > 0 && pages > 0 {
		links["prev"] = at(min(p.Number-1, pages-1))
	}
	if p.Number+1 < pages {
		links["next"] = at(p.Number + 1)
	}
	return &PageMeta{Size: p.Size, TotalElements: total, TotalPages: pages, Number: p.Number}
}

func writeHAL(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeHAL)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with a vnd.error body. Missing resources get an empty
// 404 instead; see notFound.
func writeError(w http.ResponseWriter, status int, message string) {
	hateoas.WriteVndError(w, status, message)
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}
