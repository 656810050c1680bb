package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openlumen/rdm-gateway/internal/controller"
)

// universeParam parses the {universe} URL parameter. Returns false after
// writing the error response when the value is not a universe number.
func universeParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "universe")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeBadRequest(w, "invalid universe number: "+raw)
		return 0, false
	}
	return uint(n), true
}

// handleFetchUIDs returns the current UID membership of a universe,
// annotated with cached manufacturer and device labels.
//
// GET /api/v1/universes/{universe}/uids
func (s *Server) handleFetchUIDs(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}

	entries, err := s.controller.FetchUIDs(r.Context(), universe)
	if err != nil {
		renderDispatchError(w, err)
		return
	}

	type uidRow struct {
		UID string `json:"uid"`
		controller.UIDEntry
	}
	rows := make([]uidRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, uidRow{UID: entry.UID.String(), UIDEntry: entry})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"universe": universe,
		"uids":     rows,
	})
}

// handleRunDiscovery triggers an RDM discovery pass on a universe. The
// full query parameter selects a full rescan instead of incremental.
//
// POST /api/v1/universes/{universe}/discovery?full=true
func (s *Server) handleRunDiscovery(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}
	full := r.URL.Query().Get("full") == "true"

	if err := s.controller.RunDiscovery(r.Context(), universe, full); err != nil {
		renderDispatchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"universe": universe,
		"full":     full,
		"status":   "completed",
	})
}

// handleCachedLabels returns the resolver's current label cache for a
// universe without touching the wire.
//
// GET /api/v1/universes/{universe}/labels
func (s *Server) handleCachedLabels(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}

	labels := s.controller.CachedLabels(universe)
	rows := make(map[string]controller.Labels, len(labels))
	for uid, l := range labels {
		rows[uid.String()] = l
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"universe": universe,
		"labels":   rows,
	})
}
