package controller

import (
	"context"
	"fmt"
	"sort"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// DiscoverSections computes the ordered list of sections a device
// exposes.
//
// Phase 1 fetches the supported-parameter list. A nack here is
// tolerated: some devices don't implement SUPPORTED_PARAMETERS, and
// they still get the core sections. Any other failure aborts. Phase 2
// fetches the device descriptor to pick up the DMX footprint and the
// sensor count; a soft failure here just skips the descriptor-driven
// additions.
//
// The result ordering is deterministic: a stable sort on the fixed
// catalog priority, so device info and identify always lead and sensor
// sections keep their index order.
func (c *Controller) DiscoverSections(ctx context.Context, universe uint, uid rdm.UID) ([]SectionDescriptor, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDSupportedParameters, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() && status.Type != rdm.ResponseNacked {
		return nil, statusFailure(status)
	}

	var pidList []rdm.PID
	if status.Succeeded() {
		pidList, _ = payload.([]rdm.PID)
	}

	payload, status, err = c.get(universe, uid, rdm.PIDDeviceInfo, nil)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}

	var descriptor *rdm.DeviceDescriptor
	if status.Succeeded() {
		descriptor, _ = payload.(*rdm.DeviceDescriptor)
	}

	sections := c.sectionsFor(pidList, descriptor)
	c.logger.Debug("discovered sections",
		"universe", universe, "uid", uid.String(), "count", len(sections))
	return sections, nil
}

// sectionsFor derives the section list from a supported-PID list and an
// optional device descriptor. Pure; the classification of the two
// fetches has already been dealt with by the caller.
func (c *Controller) sectionsFor(pidList []rdm.PID, descriptor *rdm.DeviceDescriptor) []SectionDescriptor {
	supported := make(map[rdm.PID]bool, len(pidList))
	for _, pid := range pidList {
		supported[pid] = true
	}

	var sections []SectionDescriptor
	add := func(id, hint string) {
		sections = append(sections, SectionDescriptor{
			ID:   id,
			Name: c.sections[id].name,
			Hint: hint,
		})
	}

	// core sections, assumed universally supported
	deviceInfoHint := ""
	if supported[rdm.PIDDeviceModelDescription] {
		deviceInfoHint = deviceInfoHintModel
	}
	add(SectionDeviceInfo, deviceInfoHint)
	add(SectionIdentify, "")

	// one pass over the advertised list; both boot-software PIDs fold
	// into a single trailing section
	dmxAddressAdded := false
	bootSoftware := false
	for _, pid := range pidList {
		switch pid {
		case rdm.PIDManufacturerLabel:
			add(SectionManufacturerLabel, "")
		case rdm.PIDDeviceLabel:
			add(SectionDeviceLabel, "")
		case rdm.PIDLanguage:
			add(SectionLanguage, "")
		case rdm.PIDBootSoftwareVersionID, rdm.PIDBootSoftwareVersionName:
			bootSoftware = true
		case rdm.PIDDMXStartAddress:
			add(SectionDMXAddress, "")
			dmxAddressAdded = true
		case rdm.PIDDeviceHours:
			add(SectionDeviceHours, "")
		case rdm.PIDLampHours:
			add(SectionLampHours, "")
		case rdm.PIDProductDetailIDList:
			add(SectionProductDetail, "")
		}
	}

	if bootSoftware {
		add(SectionBootSoftware, "")
	}

	if descriptor != nil {
		// some devices occupy slots without advertising the PID
		if descriptor.DMXFootprint > 0 && !dmxAddressAdded {
			add(SectionDMXAddress, "")
		}
		if descriptor.SensorCount > 0 &&
			supported[rdm.PIDSensorDefinition] && supported[rdm.PIDSensorValue] {
			for i := uint8(0); i < descriptor.SensorCount; i++ {
				sections = append(sections, SectionDescriptor{
					ID:   SectionSensor,
					Name: fmt.Sprintf("Sensor %d", i+1),
					Hint: fmt.Sprintf("%d", i),
				})
			}
		}
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return c.sectionPriority(sections[i].ID) < c.sectionPriority(sections[j].ID)
	})
	return sections
}
