package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.HTTPLogging() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		respondOK(w, map[string]string{"status": "ok"})
	})

	// Auth (public)
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	// Protected API
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)

		// WebSocket summary-invalidation feed
		r.Get("/ws", h.Hub.ServeWs)

		// Reference reads
		r.Get("/api/events", h.handleListEvents)
		r.Get("/api/events/{id}/payment-definition", h.handleGetPaymentDefinition)

		// Reconciliation
		r.Post("/api/events/{id}/athletes/{athleteID}/confirm", h.handleConfirmAttendance)
		r.Post("/api/events/{id}/athletes/{athleteID}/cancel", h.handleCancelAttendance)
		r.Post("/api/events/{id}/athletes/{athleteID}/payments", h.handleRegisterPayment)

		// Analytics
		r.Get("/api/analytics/events", h.handleEventSummaries)
	})

	return r
}
