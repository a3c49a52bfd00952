// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookmarksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarks_created_total",
		Help: "Bookmarks successfully created.",
	})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_auth_failures_total",
		Help: "Rejected authentication attempts by method.",
	}, []string{"method"})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarks_tokens_issued_total",
		Help: "Access tokens issued by the password grant.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_http_requests_total",
		Help: "HTTP requests by status code and method.",
	}, []string{"code", "method"})
)

// Instrument counts every request passing through next.
func Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(HTTPRequestsTotal, next)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
