package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// parseSensorIndex extracts the sensor index from the hint parameter.
func parseSensorIndex(params Params) (uint8, error) {
	index, err := strconv.ParseUint(params[FieldHint], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hint (sensor #)", ErrValidation)
	}
	return uint8(index), nil
}

// readSensor runs the sensor chain: definition first, current value
// second. The definition fetch is a soft step; devices that nack it
// still get their present value rendered, just without the range and
// type rows the definition would have supplied. The value fetch is
// final: any failure is fatal.
func (c *Controller) readSensor(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	index, err := parseSensorIndex(params)
	if err != nil {
		return nil, err
	}

	var definition *rdm.SensorDescriptor

	payload, status, err := c.get(universe, uid, rdm.PIDSensorDefinition, index)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}
	if status.Succeeded() {
		definition, _ = payload.(*rdm.SensorDescriptor)
	}

	payload, status, err = c.get(universe, uid, rdm.PIDSensorValue, index)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	value, ok := payload.(*rdm.SensorValue)
	if !ok {
		return nil, statusFailure(rdm.MalformedStatus("sensor value payload missing"))
	}

	section := &Section{SaveButton: "Record Sensor"}
	unit := ""
	if definition != nil {
		unit = sensorUnit(definition)
		section.AddString("Description", definition.Description)
		section.AddString("Type", rdm.SensorTypeToString(definition.Type))
		section.AddString("Range",
			fmt.Sprintf("%d - %d %s", definition.RangeMin, definition.RangeMax, unit))
		section.AddString("Normal Range",
			fmt.Sprintf("%d - %d %s", definition.NormalMin, definition.NormalMax, unit))

		if definition.RecordedSupport&rdm.SensorRecordedValue != 0 {
			section.AddString("Recorded Value",
				fmt.Sprintf("%d %s", value.Recorded, unit))
		}
		if definition.RecordedSupport&rdm.SensorRecordedRangeValues != 0 {
			section.AddString("Min / Max Recorded Values",
				fmt.Sprintf("%d - %d %s", value.Lowest, value.Highest, unit))
		}
	}

	present := strings.TrimSpace(fmt.Sprintf("%d %s", value.Present, unit))
	section.AddString("Present Value", present)
	if definition != nil && definition.RecordedSupport != 0 {
		section.AddHidden(FieldRecord, present)
	}

	if c.recorder != nil {
		c.recorder.WriteSensorReading(universe, uid.String(), index, float64(value.Present))
	}

	return section, nil
}

// writeRecordSensor snapshots a sensor's present value into its
// recorded value slot.
func (c *Controller) writeRecordSensor(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	index, err := parseSensorIndex(params)
	if err != nil {
		return err
	}

	status, err := c.set(universe, uid, rdm.PIDRecordSensors, index)
	if err != nil {
		return err
	}
	return writeOutcome(status)
}

// sensorUnit renders the "<prefix> <unit>" suffix for sensor readings.
func sensorUnit(definition *rdm.SensorDescriptor) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s",
		rdm.PrefixToString(definition.Prefix), rdm.UnitToString(definition.Unit)))
}
