package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
	"github.com/joestump/bookmarks/internal/store"
)

// OAuthClient is the single confidential client allowed to use the
// password grant.
type OAuthClient struct {
	ID     string
	Secret string
	Scopes []string
}

// TokenEndpoint implements the OAuth 2.0 resource owner password
// credentials grant (RFC 6749 section 4.3).
type TokenEndpoint struct {
	client   OAuthClient
	ttl      time.Duration
	tokens   TokenStore
	accounts store.AccountRepository
	log      logger.Logger
	now      func() time.Time
}

func NewTokenEndpoint(client OAuthClient, ttl time.Duration, ts TokenStore, accounts store.AccountRepository, log logger.Logger) *TokenEndpoint {
	return &TokenEndpoint{client: client, ttl: ttl, tokens: ts, accounts: accounts, log: log, now: time.Now}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Scope       string `json:"scope"`
}

type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *TokenEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID, clientSecret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if !e.clientMatches(clientID, clientSecret) {
		metrics.AuthFailuresTotal.WithLabelValues("client").Inc()
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth"`)
		writeTokenError(w, http.StatusUnauthorized, "invalid_client", "")
		return
	}

	if gt := r.PostForm.Get("grant_type"); gt != "password" {
		if gt == "" {
			writeTokenError(w, http.StatusBadRequest, "invalid_request", "grant_type is required")
			return
		}
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", "")
		return
	}

	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	scope, ok := e.grantScope(r.PostForm.Get("scope"))
	if !ok {
		writeTokenError(w, http.StatusBadRequest, "invalid_scope", "")
		return
	}

	acct, err := e.accounts.FindByUsername(r.Context(), username)
	if err != nil || !CheckPassword(acct.Password, password) {
		metrics.AuthFailuresTotal.WithLabelValues(MethodBasic).Inc()
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "bad credentials")
		return
	}

	plaintext, hash, err := GenerateToken()
	if err != nil {
		e.log.Error("generate token", logger.Error(err))
		writeTokenError(w, http.StatusInternalServerError, "server_error", "")
		return
	}
	var expiresAt *time.Time
	if e.ttl > 0 {
		t := e.now().Add(e.ttl)
		expiresAt = &t
	}
	if _, err := e.tokens.Create(r.Context(), acct.ID, e.client.ID, scope, hash, expiresAt); err != nil {
		e.log.Error("store token", logger.Error(err))
		writeTokenError(w, http.StatusInternalServerError, "server_error", "")
		return
	}
	metrics.TokensIssuedTotal.Inc()

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: plaintext,
		TokenType:   "bearer",
		ExpiresIn:   int64(e.ttl / time.Second),
		Scope:       scope,
	})
}

func (e *TokenEndpoint) clientMatches(id, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(e.client.ID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(e.client.Secret)) == 1
	return idOK && secretOK && e.client.Secret != ""
}

// grantScope returns the space-separated scope to grant. An empty request
// grants every configured scope.
func (e *TokenEndpoint) grantScope(requested string) (string, bool) {
	if strings.TrimSpace(requested) == "" {
		return strings.Join(e.client.Scopes, " "), true
	}
	allowed := make(map[string]bool, len(e.client.Scopes))
	for _, s := range e.client.Scopes {
		allowed[s] = true
	}
	fields := strings.Fields(requested)
	for _, s := range fields {
		if !allowed[s] {
			return "", false
		}
	}
	return strings.Join(fields, " "), true
}

func writeTokenError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tokenError{Error: code, Description: desc})
}
