// Package api exposes the bank views over HTTP.
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Sternrassler/bankbridge/pkg/bank"
	"github.com/Sternrassler/bankbridge/pkg/metrics"
)

// Route paths.
const (
	PathStaticBanks = "/v1/banks/all"
	PathRemoteBanks = "/v2/banks/all"
	PathHealth      = "/health"
	PathReady       = "/ready"
	PathMetrics     = "/metrics"
)

// BankService produces bank views for a query.
// *pipeline.Service implements it.
type BankService interface {
	HandleStatic(ctx context.Context, raw url.Values) ([]bank.View, error)
	HandleRemote(ctx context.Context, raw url.Values) ([]bank.View, error)
}

// ReadyCheck reports whether a dependency is reachable.
type ReadyCheck func(ctx context.Context) error

// NewRouter wires every endpoint. ready may be nil when the service has no
// external dependency to probe.
func NewRouter(svc BankService, ready ReadyCheck) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Tracing)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(JSONContentType)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(notFoundHandler)

	r.Get(PathHealth, healthHandler)
	r.Get(PathReady, readyHandler(ready))
	r.Method(http.MethodGet, PathMetrics, metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(ValidateQuery)
		r.Get(PathStaticBanks, h.handleStatic)
		r.Get(PathRemoteBanks, h.handleRemote)
	})

	return r
}
