package controller

import "github.com/openlumen/rdm-gateway/internal/rdm"

// Request describes one RDM exchange for the transport to carry.
type Request struct {
	Universe uint
	UID      rdm.UID
	PID      rdm.PID
	Set      bool
	Params   any // set-request value; nil for gets unless noted below
}

// CompletionFunc receives the classified outcome of an exchange.
//
// For successful GET requests the payload is typed by PID:
//
//	PIDSupportedParameters      []rdm.PID
//	PIDDeviceInfo               *rdm.DeviceDescriptor
//	PIDProductDetailIDList      []uint16
//	PIDDeviceModelDescription   string
//	PIDManufacturerLabel        string
//	PIDDeviceLabel              string
//	PIDLanguageCapabilities     []string
//	PIDLanguage                 string
//	PIDSoftwareVersionLabel     string
//	PIDBootSoftwareVersionName  string
//	PIDBootSoftwareVersionID    uint32
//	PIDDMXStartAddress          uint16
//	PIDSensorDefinition         *rdm.SensorDescriptor
//	PIDSensorValue              *rdm.SensorValue
//	PIDDeviceHours              uint32
//	PIDLampHours                uint32
//	PIDIdentifyDevice           bool
//
// SET requests and non-valid outcomes carry a nil payload.
//
// Sensor gets (PIDSensorDefinition, PIDSensorValue) and sensor record
// sets carry the sensor index as a uint8 in Request.Params.
type CompletionFunc func(status rdm.ResponseStatus, payload any)

// Transport is the boundary to the underlying RDM backend, typically
// the olad daemon reached over MQTT. A non-nil error from Send or the
// fetch/discovery calls means the request could not be issued at all;
// complete will then never fire. Otherwise complete fires exactly once.
//
// Implementations must invoke completion callbacks from a different
// goroutine than the caller's: the resolver issues follow-up requests
// from inside its completion handler while holding its own lock.
type Transport interface {
	// Send issues one asynchronous RDM request.
	Send(req Request, complete CompletionFunc) error

	// FetchUIDs retrieves the current UID membership of a universe.
	FetchUIDs(universe uint, complete func(uids []rdm.UID, err error)) error

	// RunDiscovery triggers RDM discovery on a universe. A full
	// discovery rebuilds the UID set from scratch; an incremental one
	// only looks for changes.
	RunDiscovery(universe uint, full bool, complete func(err error)) error
}

// Params carries the externally supplied parameters of a dispatch,
// keyed by field name ("hint", "label", "address", "hours", "language",
// "identify", "record").
type Params map[string]string
