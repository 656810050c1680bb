package rdm

import (
	"fmt"
	"strconv"
	"strings"
)

// UID is the globally unique identifier of an RDM responder: a 16-bit
// ESTA manufacturer ID plus a 32-bit device ID. UIDs are value types,
// totally ordered, and safe to use as map keys.
type UID struct {
	Manufacturer uint16
	Device       uint32
}

// ParseUID parses the canonical "mmmm:dddddddd" hex form
// (e.g. "7a70:00000001"). Both halves must be present.
func ParseUID(s string) (UID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return UID{}, fmt.Errorf("%w: %q", ErrInvalidUID, s)
	}

	manufacturer, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return UID{}, fmt.Errorf("%w: manufacturer id %q", ErrInvalidUID, parts[0])
	}

	device, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return UID{}, fmt.Errorf("%w: device id %q", ErrInvalidUID, parts[1])
	}

	return UID{Manufacturer: uint16(manufacturer), Device: uint32(device)}, nil
}

// String returns the canonical "mmmm:dddddddd" hex form.
func (u UID) String() string {
	return fmt.Sprintf("%04x:%08x", u.Manufacturer, u.Device)
}

// Compare returns -1, 0 or 1 ordering by manufacturer ID then device ID.
func (u UID) Compare(other UID) int {
	switch {
	case u.Manufacturer < other.Manufacturer:
		return -1
	case u.Manufacturer > other.Manufacturer:
		return 1
	case u.Device < other.Device:
		return -1
	case u.Device > other.Device:
		return 1
	default:
		return 0
	}
}
