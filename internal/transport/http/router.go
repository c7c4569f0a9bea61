// Package httptransport assembles the HTTP surface: baseline middleware, the
// public auth routes, the websocket upgrade route and everything behind
// RequireAuth.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eureka/internal/platform/metrics"
	"eureka/pkg/platform/httputil"
	authmw "eureka/pkg/platform/middleware/auth"
	"eureka/pkg/platform/middleware/metadata"
	"eureka/pkg/platform/middleware/request"
)

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r chi.Router)
}

// PublicRegistrar mounts routes that need no bearer token.
type PublicRegistrar interface {
	RegisterPublic(r chi.Router)
}

// Routes groups the handlers by how they authenticate.
type Routes struct {
	Public []PublicRegistrar
	// Realtime authenticates through its own gate (token in the query
	// string) and stays outside RequireAuth.
	Realtime  Registrar
	Protected []Registrar
	Metrics   http.Handler
}

type Config struct {
	Logger      *slog.Logger
	HTTPMetrics *metrics.Metrics
	Validator   authmw.JWTValidator
	Revocations authmw.TokenRevocationChecker
}

// NewRouter wires all endpoints.
func NewRouter(cfg Config, routes Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.Logger(cfg.Logger))
	r.Use(metadata.ClientMetadata)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics)
	}
	if routes.Realtime != nil {
		routes.Realtime.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		for _, h := range routes.Public {
			h.RegisterPublic(r)
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.RequireAuth(cfg.Validator, cfg.Revocations, cfg.Logger))
		for _, h := range routes.Protected {
			h.Register(r)
		}
	})
	return r
}
