package api

import (
	"net/http"
	"strconv"

	"github.com/openlumen/rdm-gateway/internal/audit"
)

// handleListAudit returns the write-audit history, most recent first.
// Supports uid, section, limit and offset query parameters.
//
// GET /api/v1/audit?uid=7a70:00000001&section=dmx_address&limit=50
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeNotFound(w, "audit history is not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		UID:     q.Get("uid"),
		Section: q.Get("section"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "invalid limit: "+raw)
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "invalid offset: "+raw)
			return
		}
		filter.Offset = n
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("audit query failed", "error", err)
		writeInternalError(w, "audit query failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
