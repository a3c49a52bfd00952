package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/bookmarks"
	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
	"github.com/joestump/bookmarks/internal/testutil"
)

const testBaseURL = "http://bookmarks.test"

// testEnv holds the router under test and the stores behind it. The demo
// accounts kis, skrb and making are seeded with two bookmarks each.
type testEnv struct {
	Router    http.Handler
	Accounts  *store.AccountStore
	Bookmarks *store.BookmarkStore
	Tokens    *auth.SQLTokenStore
}

func newTestEnv(t *testing.T, variant string) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	accounts := store.NewAccountStore(db)
	bms := store.NewBookmarkStore(db)
	tokens := auth.NewSQLTokenStore(db)
	if _, err := store.Seed(context.Background(), accounts, bms, auth.HashPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}

	deps := api.Deps{
		Service: bookmarks.NewService(accounts, bms),
		BaseURL: testBaseURL,
		Log:     logger.Nop(),
	}
	if variant == config.VariantSession {
		sm := auth.NewSessionManager(sqlite3store.NewWithCleanupInterval(db.DB, 0), time.Hour, false)
		deps.Sessions = auth.NewHeaderSession(sm, "X-Auth-Token", logger.Nop())
		deps.Authenticator = auth.NewAuthenticator(tokens, accounts, sm, logger.Nop())
		deps.TokenEndpoint = auth.NewTokenEndpoint(auth.OAuthClient{
			ID: "android-bookmarks", Secret: "123456", Scopes: []string{"write"},
		}, time.Hour, tokens, accounts, logger.Nop())
	}

	router, err := api.NewRouter(variant, deps)
	if err != nil {
		t.Fatalf("NewRouter(%s): %v", variant, err)
	}
	return &testEnv{Router: router, Accounts: accounts, Bookmarks: bms, Tokens: tokens}
}

// do sends a request through the router. body may be nil, a string, or any
// value to be JSON encoded.
func (e *testEnv) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type bookmarkResource struct {
	Bookmark api.BookmarkResponse `json:"bookmark"`
	Links    []link               `json:"links"`
}

type bookmarkResources struct {
	Links   []link             `json:"links"`
	Content []bookmarkResource `json:"content"`
}

type vndError struct {
	Logref  string `json:"logref"`
	Message string `json:"message"`
	Links   []link `json:"links"`
}

func hrefOf(links []link, rel string) string {
	for _, l := range links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

func serviceFor(e *testEnv) *bookmarks.Service {
	return bookmarks.NewService(e.Accounts, e.Bookmarks)
}
