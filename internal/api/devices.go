package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openlumen/rdm-gateway/internal/controller"
	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// uidParam parses the {uid} URL parameter. Returns false after writing
// the error response when the value is not a valid UID.
func uidParam(w http.ResponseWriter, r *http.Request) (rdm.UID, bool) {
	raw := chi.URLParam(r, "uid")
	uid, err := rdm.ParseUID(raw)
	if err != nil {
		writeBadRequest(w, "invalid uid: "+raw)
		return rdm.UID{}, false
	}
	return uid, true
}

// handleListSections probes a device for its supported parameters and
// returns the sections it exposes, in display order.
//
// GET /api/v1/universes/{universe}/devices/{uid}/sections
func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}
	uid, ok := uidParam(w, r)
	if !ok {
		return
	}

	sections, err := s.controller.DiscoverSections(r.Context(), universe, uid)
	if err != nil {
		renderDispatchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"universe": universe,
		"uid":      uid.String(),
		"sections": sections,
	})
}

// handleReadSection executes a section's read chain and returns the
// rendered items. Query parameters are passed through to the chain,
// e.g. ?hint=2 addresses sensor 2.
//
// GET /api/v1/universes/{universe}/devices/{uid}/sections/{section}
func (s *Server) handleReadSection(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}
	uid, ok := uidParam(w, r)
	if !ok {
		return
	}
	sectionID := chi.URLParam(r, "section")

	params := controller.Params{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	section, err := s.controller.Dispatch(r.Context(), universe, uid, sectionID, false, params)
	if err != nil {
		renderDispatchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, section)
}

// writeSectionRequest is the body of a section write.
type writeSectionRequest struct {
	// Params carries the section's write fields, e.g. {"label": "Truss 4"}
	// for device_label or {"address": "101"} for dmx_address.
	Params map[string]string `json:"params"`
}

// handleWriteSection executes a section's write chain. The outcome is
// recorded in the write audit regardless of success.
//
// PUT /api/v1/universes/{universe}/devices/{uid}/sections/{section}
func (s *Server) handleWriteSection(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}
	uid, ok := uidParam(w, r)
	if !ok {
		return
	}
	sectionID := chi.URLParam(r, "section")

	var req writeSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	_, err := s.controller.Dispatch(r.Context(), universe, uid, sectionID, true, req.Params)
	if err != nil {
		renderDispatchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"universe": universe,
		"uid":      uid.String(),
		"section":  sectionID,
		"status":   "written",
	})
}

// handleSupportedPIDs returns the device's raw supported-parameter list.
// Mostly a debugging aid; the sections endpoint is the curated view.
//
// GET /api/v1/universes/{universe}/devices/{uid}/supported_pids
func (s *Server) handleSupportedPIDs(w http.ResponseWriter, r *http.Request) {
	universe, ok := universeParam(w, r)
	if !ok {
		return
	}
	uid, ok := uidParam(w, r)
	if !ok {
		return
	}

	pids, err := s.controller.SupportedPIDs(r.Context(), universe, uid)
	if err != nil {
		// A nack on SUPPORTED_PARAMETERS means the device has none of the
		// optional PIDs, which is a valid (empty) answer.
		var statusErr *rdm.StatusError
		if errors.As(err, &statusErr) && statusErr.Status.Type == rdm.ResponseNacked {
			pids = nil
		} else {
			renderDispatchError(w, err)
			return
		}
	}

	hexPIDs := make([]string, 0, len(pids))
	for _, pid := range pids {
		hexPIDs = append(hexPIDs, fmt.Sprintf("0x%04x", uint16(pid)))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"universe": universe,
		"uid":      uid.String(),
		"pids":     hexPIDs,
	})
}
