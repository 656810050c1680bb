package rdm

// DeviceDescriptor is the decoded reply to a DEVICE_INFO request.
type DeviceDescriptor struct {
	ProtocolVersionHigh uint8  `json:"protocol_version_high"`
	ProtocolVersionLow  uint8  `json:"protocol_version_low"`
	DeviceModel         uint16 `json:"device_model"`
	ProductCategory     uint16 `json:"product_category"`
	SoftwareVersion     uint32 `json:"software_version"`
	DMXFootprint        uint16 `json:"dmx_footprint"`
	CurrentPersonality  uint8  `json:"current_personality"`
	PersonalityCount    uint8  `json:"personality_count"`
	DMXStartAddress     uint16 `json:"dmx_start_address"`
	SubDeviceCount      uint16 `json:"sub_device_count"`
	SensorCount         uint8  `json:"sensor_count"`
}

// Recorded-value support bits in SensorDescriptor.RecordedSupport.
const (
	SensorRecordedValue       uint8 = 0x01
	SensorRecordedRangeValues uint8 = 0x02
)

// SensorDescriptor is the decoded reply to a SENSOR_DEFINITION request.
type SensorDescriptor struct {
	Index           uint8  `json:"index"`
	Type            uint8  `json:"type"`
	Unit            uint8  `json:"unit"`
	Prefix          uint8  `json:"prefix"`
	RangeMin        int16  `json:"range_min"`
	RangeMax        int16  `json:"range_max"`
	NormalMin       int16  `json:"normal_min"`
	NormalMax       int16  `json:"normal_max"`
	RecordedSupport uint8  `json:"recorded_support"`
	Description     string `json:"description"`
}

// SensorValue is the decoded reply to a SENSOR_VALUE request.
type SensorValue struct {
	Index    uint8 `json:"index"`
	Present  int16 `json:"present"`
	Lowest   int16 `json:"lowest"`
	Highest  int16 `json:"highest"`
	Recorded int16 `json:"recorded"`
}
