// Package olad bridges the controller's transport boundary to an olad
// daemon over MQTT.
//
// This package manages:
//   - Publishing RDM command envelopes to the olad shim
//   - Correlating asynchronous responses by envelope ID
//   - Timing out commands the shim never answers
//   - Decoding PID-specific payloads into native types
//   - Tracking shim health from its retained health topic
//
// # Architecture
//
// olad owns the physical DMX/RDM universes. A small shim beside it
// subscribes to the gateway's request topic, drives olad's client API,
// and publishes one response envelope per request:
//
//	Controller → Bridge.Send → MQTT request topic → olad shim
//	Controller ← completion  ← MQTT response topic ← olad shim
//
// Responses arrive on the paho handler goroutine and expirations fire
// from the sweeper goroutine, so completion callbacks never run on the
// sender's goroutine.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The pending-command table is
// mutex guarded; each completion fires exactly once (response, timeout
// or shutdown, whichever comes first).
package olad
