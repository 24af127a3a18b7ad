// Package api exposes the intake HTTP surface: lead submission,
// engagement lookup, and push device registration. The tracking
// callback routes live in the tracking package and can be mounted here
// or run as their own server.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/service/dispatch"
)

// DispatchService is the slice of the dispatch service the handlers
// need.
type DispatchService interface {
	Dispatch(ctx context.Context, sub dispatch.Submission) (*domain.DispatchResult, error)
	Engagement(ctx context.Context, leadID string) (*domain.EngagementSummary, error)
}

// TokenRegistrar stores push device tokens.
type TokenRegistrar interface {
	Register(ctx context.Context, token, platform string) error
}

// Handlers carries the dependencies for the intake endpoints.
type Handlers struct {
	service DispatchService
	tokens  TokenRegistrar
}

// NewHandlers creates the handler set. tokens may be nil when push is
// disabled.
func NewHandlers(service DispatchService, tokens TokenRegistrar) *Handlers {
	return &Handlers{service: service, tokens: tokens}
}

// SetupRoutes configures the intake router. allowedOrigins feeds CORS
// so the public site can post the form cross-origin.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://ekosolar.com", "http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/leads", h.SubmitLead)
		r.Get("/leads/{id}/engagement", h.LeadEngagement)
		r.Post("/push-token", h.RegisterPushToken)
	})

	return r
}
