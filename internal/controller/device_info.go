package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// deviceInfoHintModel in the hint requests the extra model-description
// fetch; discovery sets it when the device advertises the capability.
const deviceInfoHintModel = "m"

// readDeviceInfo runs the device-info chain:
//
//  1. software version label (soft step)
//  2. device model description, only when the hint asks for it
//     (soft step: not all devices support the PID)
//  3. device descriptor (final, any failure is fatal)
//
// Soft steps keep the chain going on a rejection and contribute an
// empty string; a transport failure aborts the chain. When both a
// fetched label and the descriptor's native numeric field are present,
// they render as "<label> (<native>)".
func (c *Controller) readDeviceInfo(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	var softwareVersion, deviceModel string

	payload, status, err := c.get(universe, uid, rdm.PIDSoftwareVersionLabel, nil)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}
	if status.Succeeded() {
		softwareVersion, _ = payload.(string)
	}

	if strings.Contains(params[FieldHint], deviceInfoHintModel) {
		payload, status, err = c.get(universe, uid, rdm.PIDDeviceModelDescription, nil)
		if err != nil {
			return nil, err
		}
		if status.Type == rdm.ResponseTransportError {
			return nil, statusFailure(status)
		}
		if status.Succeeded() {
			deviceModel, _ = payload.(string)
		}
	}

	payload, status, err = c.get(universe, uid, rdm.PIDDeviceInfo, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	descriptor, ok := payload.(*rdm.DeviceDescriptor)
	if !ok {
		return nil, statusFailure(rdm.MalformedStatus("device info payload missing"))
	}

	section := &Section{}
	section.AddString("Protocol Version",
		fmt.Sprintf("%d.%d", descriptor.ProtocolVersionHigh, descriptor.ProtocolVersionLow))
	section.AddString("Device Model",
		annotated(deviceModel, fmt.Sprintf("%d", descriptor.DeviceModel)))
	section.AddString("Product Category",
		rdm.ProductCategoryToString(descriptor.ProductCategory))
	section.AddString("Software Version",
		annotated(softwareVersion, fmt.Sprintf("%d", descriptor.SoftwareVersion)))
	section.AddUInt("DMX Footprint", uint32(descriptor.DMXFootprint))
	section.AddString("Personality",
		fmt.Sprintf("%d of %d", descriptor.CurrentPersonality, descriptor.PersonalityCount))
	section.AddUInt("Sub Devices", uint32(descriptor.SubDeviceCount))
	section.AddUInt("Sensors", uint32(descriptor.SensorCount))
	return section, nil
}

// annotated renders an accumulated label alongside the descriptor's
// native value: "<label> (<native>)" when the label is present, just
// the native value otherwise.
func annotated(label, native string) string {
	if label == "" {
		return native
	}
	return fmt.Sprintf("%s (%s)", label, native)
}
