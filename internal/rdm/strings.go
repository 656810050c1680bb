package rdm

import "fmt"

// Human-readable names for the coded fields carried in descriptors.
// These follow the E1.20 tables; unrecognised codes fall back to a hex
// rendering rather than failing, since devices are free to use
// manufacturer-specific values.

// ProductCategoryToString returns the name of a product category code.
func ProductCategoryToString(category uint16) string {
	// Coarse categories are encoded in the high byte.
	switch category & 0xff00 {
	case 0x0000:
		return "Not declared"
	case 0x0100:
		return "Fixture"
	case 0x0200:
		return "Fixture accessory"
	case 0x0300:
		return "Projector"
	case 0x0400:
		return "Atmospheric effect"
	case 0x0500:
		return "Dimmer"
	case 0x0600:
		return "Power"
	case 0x0700:
		return "Scenic drive"
	case 0x0800:
		return "Data distribution"
	case 0x0900:
		return "Data conversion"
	case 0x0A00:
		return "Audio visual"
	case 0x0B00:
		return "Monitor"
	case 0x7000:
		return "Control"
	case 0x7100:
		return "Test equipment"
	case 0x7F00:
		return "Other"
	default:
		return fmt.Sprintf("Unknown category 0x%04x", category)
	}
}

// ProductDetailToString returns the name of a product detail ID, or ""
// for codes the gateway does not recognise (callers skip those).
func ProductDetailToString(detail uint16) string {
	switch detail {
	case 0x0000:
		return "Not Declared"
	case 0x0001:
		return "Arc Lamp"
	case 0x0002:
		return "Metal Halide Lamp"
	case 0x0003:
		return "Incandescent Lamp"
	case 0x0004:
		return "LED"
	case 0x0005:
		return "Fluorescent"
	case 0x0006:
		return "Cold Cathode"
	case 0x0007:
		return "Electroluminescent"
	case 0x0008:
		return "Laser"
	case 0x0009:
		return "Flash Tube"
	case 0x0100:
		return "Color Scroller"
	case 0x0101:
		return "Color Wheel"
	case 0x0103:
		return "Effects Disc"
	case 0x0104:
		return "Gobo Rotator"
	case 0x0200:
		return "Flogger"
	case 0x0201:
		return "Fogger (Glycol)"
	case 0x0202:
		return "Fogger (Glycerin)"
	case 0x0203:
		return "Haze"
	case 0x0400:
		return "Dimmer"
	case 0x0500:
		return "Splitter"
	case 0x0501:
		return "Ethernet Node"
	case 0x0502:
		return "Merge"
	case 0x0503:
		return "Data Patch"
	case 0x0504:
		return "Wireless Link"
	case 0x0800:
		return "Protocol Converter"
	case 0x7FFF:
		return "Other"
	default:
		return ""
	}
}

// SensorTypeToString returns the name of a sensor type code.
func SensorTypeToString(sensorType uint8) string {
	switch sensorType {
	case 0x00:
		return "Temperature"
	case 0x01:
		return "Voltage"
	case 0x02:
		return "Current"
	case 0x03:
		return "Frequency"
	case 0x04:
		return "Resistance"
	case 0x05:
		return "Power"
	case 0x06:
		return "Mass"
	case 0x07:
		return "Force"
	case 0x08:
		return "Energy"
	case 0x09:
		return "Pressure"
	case 0x0A:
		return "Time"
	case 0x0B:
		return "Angle"
	case 0x0C:
		return "Position X"
	case 0x0D:
		return "Position Y"
	case 0x0E:
		return "Position Z"
	case 0x0F:
		return "Acceleration"
	case 0x10:
		return "Angular Velocity"
	case 0x11:
		return "Luminous Intensity"
	case 0x12:
		return "Luminous Flux"
	case 0x13:
		return "Illuminance"
	case 0x14:
		return "Chrominance Red"
	case 0x15:
		return "Chrominance Green"
	case 0x16:
		return "Chrominance Blue"
	case 0x17:
		return "Contacts"
	case 0x18:
		return "Memory"
	case 0x19:
		return "Items"
	case 0x1A:
		return "Humidity"
	case 0x1B:
		return "Counter 16 Bit"
	case 0x7F:
		return "Other"
	default:
		return fmt.Sprintf("Unknown sensor type 0x%02x", sensorType)
	}
}

// UnitToString returns the symbol for a unit code, or "" for "none".
func UnitToString(unit uint8) string {
	switch unit {
	case 0x00:
		return ""
	case 0x01:
		return "C"
	case 0x02:
		return "V (DC)"
	case 0x03:
		return "V (AC peak)"
	case 0x04:
		return "V (AC RMS)"
	case 0x05:
		return "A (DC)"
	case 0x06:
		return "A (AC peak)"
	case 0x07:
		return "A (AC RMS)"
	case 0x08:
		return "Hz"
	case 0x09:
		return "Ohm"
	case 0x0A:
		return "W"
	case 0x0B:
		return "kg"
	case 0x0C:
		return "N"
	case 0x0D:
		return "J"
	case 0x0E:
		return "Pa"
	case 0x0F:
		return "s"
	case 0x10:
		return "deg"
	case 0x11:
		return "m"
	case 0x12:
		return "m/s^2"
	case 0x13:
		return "m/s"
	case 0x14:
		return "rad/s"
	case 0x15:
		return "cd"
	case 0x16:
		return "lm"
	case 0x17:
		return "lx"
	case 0x18:
		return "ire"
	case 0x19:
		return "B"
	default:
		return fmt.Sprintf("unit 0x%02x", unit)
	}
}

// PrefixToString returns the SI prefix for a prefix code, or "" for
// "none" and unrecognised codes.
func PrefixToString(prefix uint8) string {
	switch prefix {
	case 0x00:
		return ""
	case 0x01:
		return "deci"
	case 0x02:
		return "centi"
	case 0x03:
		return "milli"
	case 0x04:
		return "micro"
	case 0x05:
		return "nano"
	case 0x11:
		return "deca"
	case 0x12:
		return "hecto"
	case 0x13:
		return "kilo"
	case 0x14:
		return "mega"
	case 0x15:
		return "giga"
	default:
		return ""
	}
}
