package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
	"github.com/joestump/bookmarks/internal/store"
)

// Authentication methods recorded on a Principal.
const (
	MethodBearer  = "bearer"
	MethodSession = "session"
	MethodBasic   = "basic"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	Username string
	Method   string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey).(*Principal)
	return p
}

// Authenticator resolves a Principal from, in order, a bearer token, an
// existing session, or HTTP Basic credentials.
type Authenticator struct {
	tokens   TokenStore
	accounts store.AccountRepository
	sessions *scs.SessionManager
	log      logger.Logger
	realm    string
}

// NewAuthenticator creates an Authenticator. sessions may be nil, in which
// case session lookup is skipped and Basic logins are not remembered.
func NewAuthenticator(ts TokenStore, accounts store.AccountRepository, sm *scs.SessionManager, log logger.Logger) *Authenticator {
	return &Authenticator{tokens: ts, accounts: accounts, sessions: sm, log: log, realm: "bookmarks"}
}

// Authenticate rejects the request with 401 unless a principal can be
// resolved. Sessions must already be loaded by HeaderSession.LoadAndSave.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, method := a.resolve(r)
		if p == nil {
			metrics.AuthFailuresTotal.WithLabelValues(method).Inc()
			a.unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// resolve returns the principal, or nil and the method that failed.
func (a *Authenticator) resolve(r *http.Request) (*Principal, string) {
	ctx := r.Context()
	header := r.Header.Get("Authorization")

	if plaintext, ok := strings.CutPrefix(header, "Bearer "); ok {
		if p := a.bearer(ctx, plaintext); p != nil {
			return p, ""
		}
		return nil, MethodBearer
	}

	if a.sessions != nil {
		if username := a.sessions.GetString(ctx, SessionUsernameKey); username != "" {
			if _, err := a.accounts.FindByUsername(ctx, username); err == nil {
				return &Principal{Username: username, Method: MethodSession}, ""
			}
			// Account vanished; forget the session.
			_ = a.sessions.Destroy(ctx)
		}
	}

	if username, password, ok := r.BasicAuth(); ok {
		if p := a.basic(ctx, username, password); p != nil {
			return p, ""
		}
		return nil, MethodBasic
	}
	return nil, "none"
}

func (a *Authenticator) bearer(ctx context.Context, plaintext string) *Principal {
	if plaintext == "" {
		return nil
	}
	rec, err := a.tokens.GetByHash(ctx, HashToken(plaintext))
	if err != nil || !rec.Usable(time.Now()) {
		return nil
	}
	acct, err := a.accounts.FindOne(ctx, rec.AccountID)
	if err != nil {
		return nil
	}

	go func(id string) {
		if err := a.tokens.UpdateLastUsed(context.Background(), id); err != nil {
			a.log.Warn("update token last_used_at", logger.String("token_id", id), logger.Error(err))
		}
	}(rec.ID)

	return &Principal{Username: acct.Username, Method: MethodBearer}
}

func (a *Authenticator) basic(ctx context.Context, username, password string) *Principal {
	acct, err := a.accounts.FindByUsername(ctx, username)
	if err != nil || !CheckPassword(acct.Password, password) {
		return nil
	}
	if a.sessions != nil {
		if err := a.sessions.RenewToken(ctx); err != nil {
			a.log.Error("renew session token", logger.Error(err))
			return nil
		}
		a.sessions.Put(ctx, SessionUsernameKey, acct.Username)
	}
	return &Principal{Username: acct.Username, Method: MethodBasic}
}

func (a *Authenticator) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+a.realm+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
