package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// Single-step sections. Each read is one GET mapped straight into a
// section payload; each write validates its parameter, then issues one
// SET. Validation failures never reach the network.

func (c *Controller) readManufacturerLabel(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDManufacturerLabel, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	label, _ := payload.(string)

	// opportunistic write-through into the label cache
	c.resolver.UpdateManufacturer(universe, uid, label)

	section := &Section{}
	section.AddString("Manufacturer Label", label)
	return section, nil
}

func (c *Controller) readDeviceLabel(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDDeviceLabel, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	label, _ := payload.(string)

	c.resolver.UpdateDevice(universe, uid, label)

	section := &Section{}
	section.AddStringField("Device Label", label, FieldLabel)
	return section, nil
}

func (c *Controller) writeDeviceLabel(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	status, err := c.set(universe, uid, rdm.PIDDeviceLabel, params[FieldLabel])
	if err != nil {
		return err
	}
	return writeOutcome(status)
}

func (c *Controller) readProductDetail(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDProductDetailIDList, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	ids, _ := payload.([]uint16)

	var names []string
	for _, id := range ids {
		if name := rdm.ProductDetailToString(id); name != "" {
			names = append(names, name)
		}
	}

	section := &Section{}
	section.AddString("Product Detail IDs", strings.Join(names, ", "))
	return section, nil
}

func (c *Controller) readStartAddress(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDDMXStartAddress, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	address, _ := payload.(uint16)

	section := &Section{}
	section.AddUIntField("DMX Start Address", uint32(address), FieldAddress, 0, rdm.DMXUniverseSize-1)
	return section, nil
}

func (c *Controller) writeStartAddress(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	address, err := strconv.ParseUint(params[FieldAddress], 10, 16)
	if err != nil || address >= rdm.DMXUniverseSize {
		return fmt.Errorf("%w: invalid start address %q", ErrValidation, params[FieldAddress])
	}

	status, err := c.set(universe, uid, rdm.PIDDMXStartAddress, uint16(address))
	if err != nil {
		return err
	}
	return writeOutcome(status)
}

func (c *Controller) readDeviceHours(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	return c.readHours(universe, uid, rdm.PIDDeviceHours, "Device Hours")
}

func (c *Controller) writeDeviceHours(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	return c.writeHours(universe, uid, rdm.PIDDeviceHours, params)
}

func (c *Controller) readLampHours(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	return c.readHours(universe, uid, rdm.PIDLampHours, "Lamp Hours")
}

func (c *Controller) writeLampHours(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	return c.writeHours(universe, uid, rdm.PIDLampHours, params)
}

func (c *Controller) readHours(universe uint, uid rdm.UID, pid rdm.PID, label string) (*Section, error) {
	payload, status, err := c.get(universe, uid, pid, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	hours, _ := payload.(uint32)

	section := &Section{}
	section.AddUIntField(label, hours, FieldHours, 0, ^uint32(0))
	return section, nil
}

func (c *Controller) writeHours(universe uint, uid rdm.UID, pid rdm.PID, params Params) error {
	hours, err := strconv.ParseUint(params[FieldHours], 10, 32)
	if err != nil {
		return fmt.Errorf("%w: invalid hours %q", ErrValidation, params[FieldHours])
	}

	status, err := c.set(universe, uid, pid, uint32(hours))
	if err != nil {
		return err
	}
	return writeOutcome(status)
}

func (c *Controller) readIdentifyMode(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDIdentifyDevice, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	mode, _ := payload.(bool)

	section := &Section{}
	section.AddBoolField("Identify Mode", mode, FieldIdentify)
	return section, nil
}

func (c *Controller) writeIdentifyMode(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	status, err := c.set(universe, uid, rdm.PIDIdentifyDevice, params[FieldIdentify] == "1")
	if err != nil {
		return err
	}
	return writeOutcome(status)
}
