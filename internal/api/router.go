// Package api provides the HTTP API for the route engine.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/api/handler"
	"github.com/envroute/envroute/internal/api/middleware"
	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/geo"
	"github.com/envroute/envroute/internal/graph"
	"github.com/envroute/envroute/internal/history"
	"github.com/envroute/envroute/internal/route"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger      zerolog.Logger
	ServiceName string
	Index       *geo.Index
	Store       *env.Store
	Registry    *graph.Registry
	Engine      *route.Engine

	// History may be nil; the history endpoint is then not mounted.
	History history.Repository
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "envroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // JSON bodies on mutating methods

	opsHandler := handler.NewOpsHandler(cfg.Index, cfg.Store, cfg.Registry)
	routeHandler := handler.NewRouteHandler(cfg.Engine, cfg.Logger)
	envHandler := handler.NewEnvHandler(cfg.Store, cfg.History, cfg.Logger)

	routeRateLimit := middleware.RateLimitByIP(middleware.RouteRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Get("/health", opsHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(routeRateLimit)
			r.Post("/find-route", routeHandler.FindRoute)
			r.Post("/find-both-routes", routeHandler.FindBothRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/get-env", envHandler.GetEnv)
			if envHandler.HistoryEnabled() {
				r.Get("/env-history", envHandler.EnvHistory)
			}
		})
	})

	return r
}
