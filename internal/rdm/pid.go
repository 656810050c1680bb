package rdm

// PID is a 16-bit RDM parameter identifier.
type PID uint16

// Parameter IDs used by the gateway (E1.20 table A-3 subset).
const (
	PIDSupportedParameters     PID = 0x0050
	PIDDeviceInfo              PID = 0x0060
	PIDProductDetailIDList     PID = 0x0070
	PIDDeviceModelDescription  PID = 0x0080
	PIDManufacturerLabel       PID = 0x0081
	PIDDeviceLabel             PID = 0x0082
	PIDLanguageCapabilities    PID = 0x00A0
	PIDLanguage                PID = 0x00B0
	PIDSoftwareVersionLabel    PID = 0x00C0
	PIDBootSoftwareVersionID   PID = 0x00C1
	PIDBootSoftwareVersionName PID = 0x00C2
	PIDDMXStartAddress         PID = 0x00F0
	PIDSensorDefinition        PID = 0x0200
	PIDSensorValue             PID = 0x0201
	PIDRecordSensors           PID = 0x0202
	PIDDeviceHours             PID = 0x0400
	PIDLampHours               PID = 0x0401
	PIDIdentifyDevice          PID = 0x1000
)

// RootDevice is the sub-device index addressing the responder itself.
const RootDevice uint16 = 0

// DMXUniverseSize is the number of slots in a DMX512 universe. Start
// addresses must fall in [0, DMXUniverseSize).
const DMXUniverseSize = 512
