package controller

import "errors"

// Domain errors for the controller package.
//
// These split failures into the categories the presentation layer needs
// to distinguish: caller mistakes (ErrSectionNotFound, ErrValidation),
// infrastructure failures (ErrBackendUnavailable) and device failures
// (rdm.StatusError, surfaced verbatim).
var (
	// ErrSectionNotFound is returned when a dispatch names a section id
	// absent from the registry.
	ErrSectionNotFound = errors.New("controller: unknown section")

	// ErrNotWritable is returned when a write is dispatched to a
	// read-only section.
	ErrNotWritable = errors.New("controller: section is not writable")

	// ErrValidation is returned when an externally supplied parameter
	// fails syntactic validation. No network request was issued.
	ErrValidation = errors.New("controller: invalid parameter")

	// ErrBroadcast is returned when a chain step expecting data was
	// answered with a broadcast acknowledgement: nothing went wrong,
	// but there is no payload to render.
	ErrBroadcast = errors.New("controller: broadcast request returned no data")

	// ErrBackendUnavailable is returned when the transport cannot carry
	// the request at all: not connected, or the exchange failed at the
	// link level. The fixed prefix lets callers tell infrastructure
	// failure apart from a device actively misbehaving.
	ErrBackendUnavailable = errors.New("controller: backend unavailable")
)
