// Package handler assembles the top-level HTTP router: shared middleware,
// ambient endpoints, and the API variant chosen at startup.
package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/datarest"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
)

// Deps holds all dependencies required to build the HTTP router. Only the
// group matching Variant is used.
type Deps struct {
	Variant  string
	Log      logger.Logger
	API      api.Deps
	DataREST datarest.Deps
}

// NewRouter assembles the full chi router with all middleware and routes.
// /healthz and /metrics are registered before the variant is mounted so
// they win over its routes.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}

	var variant http.Handler
	var err error
	switch deps.Variant {
	case config.VariantDataREST:
		variant, err = datarest.NewRouter(deps.DataREST)
	case config.VariantREST, config.VariantHATEOAS, config.VariantSession:
		variant, err = api.NewRouter(deps.Variant, deps.API)
	default:
		err = fmt.Errorf("unsupported API variant %q", deps.Variant)
	}
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Requests(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)

	r.Get("/healthz", health)
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/", variant)
	return r, nil
}
