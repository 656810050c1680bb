package rdm

import "fmt"

// ResponseType classifies the outcome of one completed RDM exchange.
// Exactly one classification applies per exchange.
type ResponseType int

const (
	// ResponseValid means a well-formed reply was received.
	ResponseValid ResponseType = iota

	// ResponseBroadcast means the request was a broadcast, so no reply
	// was ever expected. Not a success (there is no data) but not an
	// error either; callers must branch.
	ResponseBroadcast

	// ResponseNacked means the responder actively rejected the request
	// with a reason code.
	ResponseNacked

	// ResponseMalformed means a reply arrived but failed structural
	// validation.
	ResponseMalformed

	// ResponseTransportError means no reply: link failure, timeout or
	// the responder is unreachable.
	ResponseTransportError
)

// ResponseStatus is the classified outcome of a low-level exchange.
// The zero value is a valid response.
type ResponseStatus struct {
	Type       ResponseType
	NackReason NackReason // set when Type == ResponseNacked
	Detail     string     // transport/malformed detail text
}

// Succeeded reports the boolean collapse of the classification: only a
// valid reply counts. Chain steps that tolerate rejection must inspect
// Type directly instead of using this.
func (s ResponseStatus) Succeeded() bool {
	return s.Type == ResponseValid
}

// ErrorString renders the human-readable error for a failed exchange.
// Valid and broadcast outcomes produce an empty string.
func (s ResponseStatus) ErrorString() string {
	switch s.Type {
	case ResponseValid, ResponseBroadcast:
		return ""
	case ResponseNacked:
		return fmt.Sprintf("Request was NACKED with code: %s", s.NackReason)
	case ResponseMalformed:
		return fmt.Sprintf("Malformed RDM response %s", s.Detail)
	case ResponseTransportError:
		return fmt.Sprintf("RDM command error: %s", s.Detail)
	default:
		return fmt.Sprintf("Unknown response status %d", int(s.Type))
	}
}

// Err returns the classified failure as an error, or nil for valid and
// broadcast outcomes.
func (s ResponseStatus) Err() error {
	if s.Type == ResponseValid || s.Type == ResponseBroadcast {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError wraps a failed ResponseStatus as an error so chain code
// can propagate classified failures through normal error returns.
type StatusError struct {
	Status ResponseStatus
}

func (e *StatusError) Error() string {
	return e.Status.ErrorString()
}

// TransportError builds a transport-failure status with detail text.
func TransportError(detail string) ResponseStatus {
	return ResponseStatus{Type: ResponseTransportError, Detail: detail}
}

// NackedStatus builds a rejection status with the given reason.
func NackedStatus(reason NackReason) ResponseStatus {
	return ResponseStatus{Type: ResponseNacked, NackReason: reason}
}

// MalformedStatus builds a malformed-reply status with detail text.
func MalformedStatus(detail string) ResponseStatus {
	return ResponseStatus{Type: ResponseMalformed, Detail: detail}
}
