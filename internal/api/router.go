// Package api serves the bookmark endpoints of the rest, hateoas and
// session variants.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/bookmarks"
	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/hateoas"
	"github.com/joestump/bookmarks/internal/logger"
)

// Deps holds everything the API routers need. The auth fields are only
// used by the session variant; OIDC may be nil.
type Deps struct {
	Service *bookmarks.Service
	BaseURL string
	Log     logger.Logger

	Sessions      *auth.HeaderSession
	Authenticator *auth.Authenticator
	TokenEndpoint http.Handler
	OIDC          *auth.Handlers
}

// NewRouter builds the route table for variant.
func NewRouter(variant string, deps Deps) (chi.Router, error) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	switch variant {
	case config.VariantREST:
		return pathRouter(deps, false, writeError), nil
	case config.VariantHATEOAS:
		return pathRouter(deps, true, writeVndError), nil
	case config.VariantSession:
		return sessionRouter(deps)
	default:
		return nil, fmt.Errorf("api: unsupported variant %q", variant)
	}
}

// pathRouter names the owner in the path: /{userId}/bookmarks.
func pathRouter(deps Deps, hypermedia bool, writeErr errorWriter) chi.Router {
	h := &bookmarksHandler{
		svc:        deps.Service,
		linker:     hateoas.MustLinker(hateoas.PathTemplates),
		baseURL:    deps.BaseURL,
		hypermedia: hypermedia,
		writeErr:   writeErr,
		owner:      func(r *http.Request) string { return chi.URLParam(r, "userId") },
		log:        deps.Log,
	}

	r := chi.NewRouter()
	r.Route("/{userId}/bookmarks", h.register)
	return r
}

// sessionRouter takes the owner from the authenticated principal.
func sessionRouter(deps Deps) (chi.Router, error) {
	if deps.Sessions == nil || deps.Authenticator == nil || deps.TokenEndpoint == nil {
		return nil, fmt.Errorf("api: session variant needs sessions, an authenticator and a token endpoint")
	}
	h := &bookmarksHandler{
		svc:        deps.Service,
		linker:     hateoas.MustLinker(hateoas.PrincipalTemplates),
		baseURL:    deps.BaseURL,
		hypermedia: true,
		writeErr:   writeVndError,
		owner:      principalName,
		log:        deps.Log,
	}

	r := chi.NewRouter()
	r.Method(http.MethodPost, "/oauth/token", deps.TokenEndpoint)

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.LoadAndSave)

		if deps.OIDC != nil {
			r.Get("/auth/login", deps.OIDC.Login)
			r.Get("/auth/callback", deps.OIDC.Callback)
			r.Post("/auth/logout", deps.OIDC.Logout)
		}

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticator.Authenticate)
			r.Get("/", whoAmI)
			r.Route("/bookmarks", h.register)
		})
	})
	return r, nil
}

func principalName(r *http.Request) string {
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		return p.Username
	}
	return ""
}

// whoAmI answers GET / with the principal's username.
func whoAmI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(principalName(r)))
}
