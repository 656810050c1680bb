package rdm

import "fmt"

// NackReason is the reason code carried by a NACK response
// (E1.20 table A-17).
type NackReason uint16

const (
	NackUnknownPID        NackReason = 0x0000
	NackFormatError       NackReason = 0x0001
	NackHardwareFault     NackReason = 0x0002
	NackProxyReject       NackReason = 0x0003
	NackWriteProtect      NackReason = 0x0004
	NackUnsupportedCmd    NackReason = 0x0005
	NackDataOutOfRange    NackReason = 0x0006
	NackBufferFull        NackReason = 0x0007
	NackPacketSizeMax     NackReason = 0x0008
	NackSubDeviceRange    NackReason = 0x0009
	NackProxyBufferFull   NackReason = 0x000A
)

// String returns the descriptive text for a nack reason code.
func (n NackReason) String() string {
	switch n {
	case NackUnknownPID:
		return "Unknown PID"
	case NackFormatError:
		return "Format error"
	case NackHardwareFault:
		return "Hardware fault"
	case NackProxyReject:
		return "Proxy reject"
	case NackWriteProtect:
		return "Write protect"
	case NackUnsupportedCmd:
		return "Unsupported command class"
	case NackDataOutOfRange:
		return "Data out of range"
	case NackBufferFull:
		return "Buffer full"
	case NackPacketSizeMax:
		return "Packet size unsupported"
	case NackSubDeviceRange:
		return "Sub device out of range"
	case NackProxyBufferFull:
		return "Proxy buffer full"
	default:
		return fmt.Sprintf("Unknown nack reason 0x%04x", uint16(n))
	}
}
