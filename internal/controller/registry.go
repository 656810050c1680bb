package controller

import (
	"context"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// Section identifiers. These are part of the external API: the facade
// dispatches on them and discovery returns them.
const (
	SectionDeviceInfo        = "device_info"
	SectionIdentify          = "identify"
	SectionManufacturerLabel = "manufacturer_label"
	SectionDeviceLabel       = "device_label"
	SectionLanguage          = "language"
	SectionDMXAddress        = "dmx_address"
	SectionDeviceHours       = "device_hours"
	SectionLampHours         = "lamp_hours"
	SectionProductDetail     = "product_detail"
	SectionBootSoftware      = "boot_software"
	SectionSensor            = "sensor"
)

// Parameter field names accepted by section writes and reads.
const (
	FieldHint     = "hint"
	FieldLabel    = "label"
	FieldLanguage = "language"
	FieldAddress  = "address"
	FieldHours    = "hours"
	FieldIdentify = "identify"
	FieldRecord   = "record"
)

// readChain implements one logical section read: a fixed sequence of
// RDM exchanges ending in a Section payload.
type readChain func(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error)

// writeChain implements one logical section write. Validation happens
// before any network request is issued.
type writeChain func(ctx context.Context, universe uint, uid rdm.UID, params Params) error

// sectionEntry binds a section id to its display name, its discovery
// sort priority, and its handler pair.
type sectionEntry struct {
	id       string
	name     string
	priority int
	read     readChain
	write    writeChain // nil for read-only sections
}

// buildRegistry constructs the fixed section catalog. The priority
// values define the deterministic discovery ordering: device info and
// identify always lead, then the catalog order, with boot software and
// sensors trailing.
func (c *Controller) buildRegistry() {
	entries := []sectionEntry{
		{id: SectionDeviceInfo, name: "Device Info", priority: 0,
			read: c.readDeviceInfo},
		{id: SectionIdentify, name: "Identify Mode", priority: 1,
			read: c.readIdentifyMode, write: c.writeIdentifyMode},
		{id: SectionManufacturerLabel, name: "Manufacturer Label", priority: 2,
			read: c.readManufacturerLabel},
		{id: SectionDeviceLabel, name: "Device Label", priority: 3,
			read: c.readDeviceLabel, write: c.writeDeviceLabel},
		{id: SectionLanguage, name: "Language", priority: 4,
			read: c.readLanguage, write: c.writeLanguage},
		{id: SectionDMXAddress, name: "DMX Start Address", priority: 5,
			read: c.readStartAddress, write: c.writeStartAddress},
		{id: SectionDeviceHours, name: "Device Hours", priority: 6,
			read: c.readDeviceHours, write: c.writeDeviceHours},
		{id: SectionLampHours, name: "Lamp Hours", priority: 7,
			read: c.readLampHours, write: c.writeLampHours},
		{id: SectionProductDetail, name: "Product Details", priority: 8,
			read: c.readProductDetail},
		{id: SectionBootSoftware, name: "Boot Software Version", priority: 9,
			read: c.readBootSoftware},
		{id: SectionSensor, name: "Sensor", priority: 10,
			read: c.readSensor, write: c.writeRecordSensor},
	}

	c.sections = make(map[string]*sectionEntry, len(entries))
	for i := range entries {
		c.sections[entries[i].id] = &entries[i]
	}
}

// sectionPriority returns the discovery sort priority for a section id.
// Unknown ids sort last; they cannot occur from discovery itself.
func (c *Controller) sectionPriority(id string) int {
	if entry, ok := c.sections[id]; ok {
		return entry.priority
	}
	return len(c.sections)
}
