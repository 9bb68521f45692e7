package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ths-gateway/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check (no auth required)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermQuery))
			r.Get("/query/{category}", s.handleQuery)
			r.Post("/history/{category}", s.handleQueryHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermOrder))
			r.Post("/order/{category}", s.handleSendOrder)
			r.Get("/order/cancel/{order_id}", s.handleCancelOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermAuditRead))
			r.Get("/audit", s.handleListAuditLogs)
		})
	})

	return r
}
