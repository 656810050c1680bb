package olad

import "errors"

// Domain-specific errors for the olad bridge.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when the MQTT broker link is down.
	ErrNotConnected = errors.New("olad: not connected to broker")

	// ErrClosed is returned when the bridge has been shut down.
	ErrClosed = errors.New("olad: bridge closed")

	// ErrPublishFailed is returned when a request envelope cannot be published.
	ErrPublishFailed = errors.New("olad: publish failed")
)
