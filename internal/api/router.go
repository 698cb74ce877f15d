// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pictonet/pictonet/internal/config"
	"github.com/pictonet/pictonet/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a Router around the given handler.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup builds the route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.API.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))
	r.Use(chiMiddleware(middleware.Compression))

	// Credential endpoints get a stricter limit against brute force.
	r.Group(func(r chi.Router) {
		r.Use(rt.rateLimit(10, 5*time.Minute))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Post("/register", rt.handler.Register)
		r.Post("/login", rt.handler.Login)
	})

	// Data endpoints.
	r.Group(func(r chi.Router) {
		r.Use(rt.rateLimit(rt.cfg.API.RateLimitReqs, rt.cfg.API.RateLimitWindow))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/users", rt.handler.CreateUser)
		r.Get("/users/{id}", rt.handler.GetUser)
		r.Get("/posts", rt.handler.ListPosts)
		r.Post("/upload", rt.handler.Upload)
		r.Get("/profile/{username}", rt.handler.GetProfile)
		r.Post("/profile/{username}/avatar", rt.handler.UpdateAvatar)
		r.Post("/chats", rt.handler.CreateChat)
		r.Get("/chats", rt.handler.ListChats)
		r.Get("/messages/{chatId}", rt.handler.ListMessages)
		r.Get("/uploads/{userId}/{filename}", rt.handler.ServeUpload)
	})

	// The websocket, health and metrics endpoints skip rate limiting:
	// the relay holds one long-lived connection per client and the
	// other two are hit by monitoring.
	r.Get("/ws", rt.handler.WebSocket)
	r.Get("/health", rt.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// rateLimit returns an IP-keyed limiter, or a no-op when disabled.
func (rt *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if rt.cfg.API.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}
