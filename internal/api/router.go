package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Universe endpoints
		r.Route("/universes/{universe}", func(r chi.Router) {
			r.Get("/uids", s.handleFetchUIDs)
			r.Post("/discovery", s.handleRunDiscovery)
			r.Get("/labels", s.handleCachedLabels)

			// Device endpoints, addressed by UID within a universe
			r.Route("/devices/{uid}", func(r chi.Router) {
				r.Get("/sections", s.handleListSections)
				r.Get("/sections/{section}", s.handleReadSection)
				r.Put("/sections/{section}", s.handleWriteSection)
				r.Get("/supported_pids", s.handleSupportedPIDs)
			})
		})

		// Write audit history
		r.Get("/audit", s.handleListAudit)

		// WebSocket for label-resolution events
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status, including the state of
// the link to the olad shim when a bridge is wired.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	}
	if s.bridge != nil {
		backend := "ok"
		if !s.bridge.Healthy() {
			backend = "degraded"
			body["status"] = "degraded"
		}
		body["backend"] = backend

		if health, ok := s.bridge.LastHealth(); ok {
			body["shim"] = map[string]any{
				"id":             health.Shim,
				"status":         health.Status,
				"olad_connected": health.OladConnected,
				"universes":      health.Universes,
			}
		}
	}
	writeJSON(w, http.StatusOK, body)
}
