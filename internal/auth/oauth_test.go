package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/logger"
)

func newTokenServer(t *testing.T) (*authEnv, *httptest.Server) {
	t.Helper()
	env := newAuthEnv(t)
	ep := auth.NewTokenEndpoint(auth.OAuthClient{
		ID:     "android-bookmarks",
		Secret: "123456",
		Scopes: []string{"write"},
	}, time.Hour, env.tokens, env.accounts, logger.Nop())

	mux := http.NewServeMux()
	mux.Handle("POST /oauth/token", ep)
	mux.Handle("/bookmarks", env.handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return env, srv
}

func TestTokenEndpoint_PasswordGrantWithOAuth2Client(t *testing.T) {
	_, srv := newTokenServer(t)

	cfg := &oauth2.Config{
		ClientID:     "android-bookmarks",
		ClientSecret: "123456",
		Scopes:       []string{"write"},
		Endpoint: oauth2.Endpoint{
			TokenURL:  srv.URL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())
	tok, err := cfg.PasswordCredentialsToken(ctx, "kis", "password")
	if err != nil {
		t.Fatalf("PasswordCredentialsToken: %v", err)
	}
	if !strings.HasPrefix(tok.AccessToken, auth.TokenPrefix) {
		t.Errorf("access token = %q, want prefix %q", tok.AccessToken, auth.TokenPrefix)
	}
	if tok.Expiry.IsZero() {
		t.Error("expected an expiry from expires_in")
	}

	// The issued token authenticates API calls.
	resp, err := cfg.Client(ctx, tok).Get(srv.URL + "/bookmarks")
	if err != nil {
		t.Fatalf("GET /bookmarks: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestTokenEndpoint_Errors(t *testing.T) {
	_, srv := newTokenServer(t)

	tests := []struct {
		name       string
		clientID   string
		secret     string
		form       url.Values
		wantStatus int
		wantError  string
	}{
		{
			name: "bad client secret", clientID: "android-bookmarks", secret: "nope",
			form:       url.Values{"grant_type": {"password"}, "username": {"kis"}, "password": {"password"}},
			wantStatus: http.StatusUnauthorized, wantError: "invalid_client",
		},
		{
			name: "unknown client", clientID: "ios-bookmarks", secret: "123456",
			form:       url.Values{"grant_type": {"password"}, "username": {"kis"}, "password": {"password"}},
			wantStatus: http.StatusUnauthorized, wantError: "invalid_client",
		},
		{
			name: "unsupported grant", clientID: "android-bookmarks", secret: "123456",
			form:       url.Values{"grant_type": {"client_credentials"}},
			wantStatus: http.StatusBadRequest, wantError: "unsupported_grant_type",
		},
		{
			name: "missing grant", clientID: "android-bookmarks", secret: "123456",
			form:       url.Values{"username": {"kis"}},
			wantStatus: http.StatusBadRequest, wantError: "invalid_request",
		},
		{
			name: "wrong password", clientID: "android-bookmarks", secret: "123456",
			form:       url.Values{"grant_type": {"password"}, "username": {"kis"}, "password": {"wrong"}},
			wantStatus: http.StatusBadRequest, wantError: "invalid_grant",
		},
		{
			name: "unknown user", clientID: "android-bookmarks", secret: "123456",
			form:       url.Values{"grant_type": {"password"}, "username": {"ghost"}, "password": {"password"}},
			wantStatus: http.StatusBadRequest, wantError: "invalid_grant",
		},
		{
			name: "scope not allowed", clientID: "android-bookmarks", secret: "123456",
			form:       url.Values{"grant_type": {"password"}, "username": {"kis"}, "password": {"password"}, "scope": {"admin"}},
			wantStatus: http.StatusBadRequest, wantError: "invalid_scope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/oauth/token", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.SetBasicAuth(tt.clientID, tt.secret)

			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestTokenEndpoint_ClientCredentialsInForm(t *testing.T) {
	_, srv := newTokenServer(t)

	form := url.Values{
		"grant_type":    {"password"},
		"username":      {"kis"},
		"password":      {"password"},
		"client_id":     {"android-bookmarks"},
		"client_secret": {"123456"},
	}
	resp, err := srv.Client().PostForm(srv.URL+"/oauth/token", form)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		TokenType string `json:"token_type"`
		Scope     string `json:"scope"`
		ExpiresIn int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TokenType != "bearer" || body.Scope != "write" || body.ExpiresIn != 3600 {
		t.Errorf("body = %+v", body)
	}
}
