/**
 * @description
 * This file sets up the HTTP router for the dashboard-service. It defines the
 * API endpoints, associates them with their handlers, and applies middleware
 * for logging, panic recovery, timeouts and CORS (the dashboard frontend is a
 * browser client).
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for chi.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DashboardRoutes creates and returns a new router for the dashboard service.
func DashboardRoutes(h *DashboardHandlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/user", h.GetUserHandler)
		r.Get("/accounts", h.GetAccountsHandler)
		r.Get("/selection", h.GetSelectionHandler)
		r.Put("/selection", h.PutSelectionHandler)
		r.Get("/transfer-form", h.GetTransferFormHandler)
		r.Put("/transfer-form", h.PutTransferFormHandler)
		r.Post("/transfer-form/submit", h.SubmitTransferHandler)
		r.Post("/refresh", h.RefreshHandler)
	})

	return r
}
