package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
	"github.com/joestump/bookmarks/internal/testutil"
)

const sessionHeader = "X-Auth-Token"

type authEnv struct {
	db       *sqlx.DB
	accounts *store.AccountStore
	tokens   *auth.SQLTokenStore
	account  *store.Account
	handler  http.Handler
}

// newAuthEnv wires HeaderSession -> Authenticator -> a handler that echoes
// "<username>:<method>" for the resolved principal.
func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)
	accounts := store.NewAccountStore(conn)
	tokens := auth.NewSQLTokenStore(conn)

	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	acct, err := accounts.Save(context.Background(), &store.Account{Username: "kis", Password: hash})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	sm := auth.NewSessionManager(sqlite3store.NewWithCleanupInterval(conn.DB, 0), time.Hour, false)
	hs := auth.NewHeaderSession(sm, sessionHeader, logger.Nop())
	a := auth.NewAuthenticator(tokens, accounts, sm, logger.Nop())

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		fmt.Fprintf(w, "%s:%s", p.Username, p.Method)
	})
	return &authEnv{db: conn, accounts: accounts, tokens: tokens, account: acct, handler: hs.LoadAndSave(a.Authenticate(echo))}
}

func (e *authEnv) do(t *testing.T, mutate func(r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
	mutate(req)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *authEnv) issueToken(t *testing.T, expiresAt *time.Time) (string, *auth.TokenRecord) {
	t.Helper()
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	rec, err := e.tokens.Create(context.Background(), e.account.ID, "android-bookmarks", "write", hash, expiresAt)
	if err != nil {
		t.Fatalf("Create token: %v", err)
	}
	return plaintext, rec
}

func assertUnauthorized(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if got := rr.Header().Get("WWW-Authenticate"); got != `Basic realm="bookmarks"` {
		t.Errorf("WWW-Authenticate = %q", got)
	}
	if !strings.Contains(rr.Body.String(), `"error":"unauthorized"`) {
		t.Errorf("body = %q, want unauthorized error", rr.Body.String())
	}
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	env := newAuthEnv(t)
	assertUnauthorized(t, env.do(t, func(r *http.Request) {}))
}

func TestAuthenticate_ValidBearer(t *testing.T) {
	env := newAuthEnv(t)
	plaintext, _ := env.issueToken(t, nil)

	rr := env.do(t, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+plaintext) })
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != "kis:bearer" {
		t.Errorf("body = %q, want kis:bearer", rr.Body.String())
	}
	if rr.Header().Get(sessionHeader) != "" {
		t.Error("bearer auth should not create a session")
	}
}

func TestAuthenticate_BearerRejected(t *testing.T) {
	env := newAuthEnv(t)
	past := time.Now().Add(-time.Minute)
	expired, _ := env.issueToken(t, &past)
	revoked, rec := env.issueToken(t, nil)
	if err := env.tokens.Revoke(context.Background(), rec.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"unknown", "bm_doesnotexist"},
		{"empty", ""},
		{"expired", expired},
		{"revoked", revoked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tt.token) })
			assertUnauthorized(t, rr)
		})
	}
}

func TestAuthenticate_BasicEstablishesSession(t *testing.T) {
	env := newAuthEnv(t)

	rr := env.do(t, func(r *http.Request) { r.SetBasicAuth("kis", "password") })
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "kis:basic" {
		t.Errorf("body = %q, want kis:basic", rr.Body.String())
	}
	token := rr.Header().Get(sessionHeader)
	if token == "" {
		t.Fatalf("expected %s header after basic login", sessionHeader)
	}

	rr = env.do(t, func(r *http.Request) { r.Header.Set(sessionHeader, token) })
	if rr.Code != http.StatusOK {
		t.Fatalf("session request status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "kis:session" {
		t.Errorf("body = %q, want kis:session", rr.Body.String())
	}
}

func TestAuthenticate_BasicWrongPassword(t *testing.T) {
	env := newAuthEnv(t)

	rr := env.do(t, func(r *http.Request) { r.SetBasicAuth("kis", "wrong") })
	assertUnauthorized(t, rr)
	if rr.Header().Get(sessionHeader) != "" {
		t.Error("failed login must not hand out a session")
	}
}

func TestAuthenticate_BasicUnknownUser(t *testing.T) {
	env := newAuthEnv(t)
	assertUnauthorized(t, env.do(t, func(r *http.Request) { r.SetBasicAuth("nobody", "password") }))
}

func TestAuthenticate_UnknownSessionToken(t *testing.T) {
	env := newAuthEnv(t)
	assertUnauthorized(t, env.do(t, func(r *http.Request) { r.Header.Set(sessionHeader, "not-a-session") }))
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	if p := auth.PrincipalFromContext(context.Background()); p != nil {
		t.Errorf("PrincipalFromContext = %+v, want nil", p)
	}
	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{Username: "skrb", Method: auth.MethodBasic})
	if p := auth.PrincipalFromContext(ctx); p == nil || p.Username != "skrb" {
		t.Errorf("PrincipalFromContext = %+v, want skrb", p)
	}
}
