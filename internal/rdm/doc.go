// Package rdm holds the protocol-level vocabulary shared by the
// controller core and the olad bridge: device UIDs, parameter IDs,
// response classification, and the descriptor structures returned by
// GET requests.
//
// Nothing in this package performs I/O. Byte-level framing of RDM
// messages lives entirely in the olad daemon; the gateway only ever
// sees decoded values.
//
// # Key Types
//
//   - UID: globally unique identifier of an RDM responder
//   - PID: 16-bit parameter identifier (E1.20 table A-3 subset)
//   - ResponseStatus: five-way classification of a completed exchange
//   - DeviceDescriptor / SensorDescriptor / SensorValue: decoded replies
package rdm
