// Package httptransport is the thin HTTP layer. Handlers decode, parse
// domain primitives, delegate to services, and map errors; no business logic
// lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dropforge/internal/transport/http/middleware"
)

// Registrar is implemented by every area handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter assembles the middleware chain and mounts all area handlers
// under /v1. Metrics and health stay outside the authenticated chain.
func NewRouter(logger *slog.Logger, validator middleware.JWTValidator, handlers ...Registrar) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Recovery(logger))
	root.Use(middleware.RequestID)
	root.Use(middleware.Logger(logger))
	root.Use(middleware.ClientMetadata)

	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.RequireAuth(validator, logger))
	for _, h := range handlers {
		h.Register(api)
	}
	root.Mount("/v1", api)
	return root
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
