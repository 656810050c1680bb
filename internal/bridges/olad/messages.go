package olad

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// MQTT envelope types for communication between the gateway and the
// olad shim. All correlation is carried in the envelope ID; both sides
// share a single request topic and a single response topic.

// Request actions understood by the olad shim.
const (
	ActionGet           = "rdm_get"
	ActionSet           = "rdm_set"
	ActionFetchUIDs     = "fetch_uids"
	ActionDiscovery     = "run_discovery"
	ActionListUniverses = "list_universes"
)

// RequestEnvelope is sent from the gateway to the olad shim.
// Topic: openlumen/rdm/request
type RequestEnvelope struct {
	// ID uniquely identifies this request for correlation with the response.
	ID string `json:"id"`

	// Timestamp is when the request was issued (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Action is the requested operation (rdm_get, rdm_set, fetch_uids,
	// run_discovery).
	Action string `json:"action"`

	// Universe is the target DMX universe.
	Universe uint `json:"universe"`

	// UID is the target responder ("mmmm:dddddddd"); empty for
	// universe-level actions.
	UID string `json:"uid,omitempty"`

	// PID is the parameter ID for rdm_get/rdm_set.
	PID uint16 `json:"pid,omitempty"`

	// Params carries the set-request value or get-request argument,
	// encoded per PID (sensor index, label string, address, ...).
	Params json.RawMessage `json:"params,omitempty"`

	// Full requests a from-scratch discovery instead of an incremental one.
	Full bool `json:"full,omitempty"`
}

// Response statuses reported by the olad shim. These mirror olad's own
// response classification.
const (
	StatusOK             = "ok"
	StatusBroadcast      = "broadcast"
	StatusNack           = "nack"
	StatusMalformed      = "malformed"
	StatusTransportError = "transport_error"
)

// ResponseEnvelope is sent from the olad shim back to the gateway.
// Topic: openlumen/rdm/response
type ResponseEnvelope struct {
	// ID is the ID from the original request.
	ID string `json:"id"`

	// Timestamp is when the response was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status is the exchange classification (ok, broadcast, nack,
	// malformed, transport_error).
	Status string `json:"status"`

	// NackReason is the E1.20 reason code when Status is nack.
	NackReason uint16 `json:"nack_reason,omitempty"`

	// Detail is the failure text for malformed and transport_error.
	Detail string `json:"detail,omitempty"`

	// Payload is the PID-specific response body for successful gets.
	Payload json.RawMessage `json:"payload,omitempty"`

	// UIDs is the universe membership for fetch_uids responses.
	UIDs []string `json:"uids,omitempty"`

	// Universes is the active universe list for list_universes responses.
	Universes []uint `json:"universes,omitempty"`
}

// HealthMessage is published by the olad shim on its health topic.
// Topic: openlumen/rdm/health, retained.
type HealthMessage struct {
	// Shim identifies the publishing shim instance.
	Shim string `json:"shim"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status is the operational status (healthy, degraded, offline).
	Status string `json:"status"`

	// OladConnected reports whether the shim currently talks to olad.
	OladConnected bool `json:"olad_connected"`

	// Universes is the number of universes olad exposes.
	Universes int `json:"universes"`
}

// toStatus maps a response envelope onto the controller's response
// classification.
func (r *ResponseEnvelope) toStatus() rdm.ResponseStatus {
	switch r.Status {
	case StatusOK:
		return rdm.ResponseStatus{}
	case StatusBroadcast:
		return rdm.ResponseStatus{Type: rdm.ResponseBroadcast}
	case StatusNack:
		return rdm.NackedStatus(rdm.NackReason(r.NackReason))
	case StatusMalformed:
		return rdm.MalformedStatus(r.Detail)
	case StatusTransportError:
		return rdm.TransportError(r.Detail)
	default:
		return rdm.MalformedStatus(fmt.Sprintf("unknown response status %q", r.Status))
	}
}

// decodePayload turns a successful get's JSON payload into the native
// type the controller expects for the PID.
func decodePayload(pid rdm.PID, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload for pid 0x%04x", uint16(pid))
	}

	switch pid {
	case rdm.PIDSupportedParameters:
		var pids []uint16
		if err := json.Unmarshal(raw, &pids); err != nil {
			return nil, err
		}
		out := make([]rdm.PID, len(pids))
		for i, p := range pids {
			out[i] = rdm.PID(p)
		}
		return out, nil

	case rdm.PIDDeviceInfo:
		var d rdm.DeviceDescriptor
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case rdm.PIDProductDetailIDList:
		var ids []uint16
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, err
		}
		return ids, nil

	case rdm.PIDLanguageCapabilities:
		var languages []string
		if err := json.Unmarshal(raw, &languages); err != nil {
			return nil, err
		}
		return languages, nil

	case rdm.PIDDeviceModelDescription, rdm.PIDManufacturerLabel,
		rdm.PIDDeviceLabel, rdm.PIDLanguage,
		rdm.PIDSoftwareVersionLabel, rdm.PIDBootSoftwareVersionName:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil

	case rdm.PIDBootSoftwareVersionID, rdm.PIDDeviceHours, rdm.PIDLampHours:
		var v uint32
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case rdm.PIDDMXStartAddress:
		var v uint16
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case rdm.PIDSensorDefinition:
		var d rdm.SensorDescriptor
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case rdm.PIDSensorValue:
		var v rdm.SensorValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &v, nil

	case rdm.PIDIdentifyDevice:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil

	default:
		return nil, fmt.Errorf("no payload decoder for pid 0x%04x", uint16(pid))
	}
}

// parseUIDList converts the shim's UID strings, dropping any that fail
// to parse so one corrupt entry cannot poison a whole membership fetch.
func parseUIDList(raw []string) []rdm.UID {
	uids := make([]rdm.UID, 0, len(raw))
	for _, s := range raw {
		uid, err := rdm.ParseUID(s)
		if err != nil {
			continue
		}
		uids = append(uids, uid)
	}
	return uids
}
