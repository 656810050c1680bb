package influxdb

import (
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorReading writes a single RDM sensor present-value reading.
//
// This is the telemetry sink for sensor section reads. The write is
// non-blocking; data is batched and sent asynchronously, so it is safe
// to call from response-handling goroutines.
//
// Parameters:
//   - universe: DMX universe the responder lives on
//   - uid: Responder UID in "mmmm:dddddddd" form
//   - sensor: Sensor index on the responder (0-254)
//   - value: Present value in the sensor's native unit
//
// Example:
//
//	client.WriteSensorReading(1, "7a70:00000001", 0, 44)
func (c *Client) WriteSensorReading(universe uint, uid string, sensor uint8, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"rdm_sensors",
		map[string]string{
			"universe": fmt.Sprintf("%d", universe),
			"uid":      uid,
			"sensor":   fmt.Sprintf("%d", sensor),
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDiscoveryMetric records the outcome of a discovery pass on a
// universe: how many responders were found and how long the pass took.
//
// Parameters:
//   - universe: DMX universe that was scanned
//   - responders: Number of UIDs present after the pass
//   - duration: Wall-clock time the pass took
func (c *Client) WriteDiscoveryMetric(universe uint, responders int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"rdm_discovery",
		map[string]string{
			"universe": fmt.Sprintf("%d", universe),
		},
		map[string]interface{}{
			"responders":  responders,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandMetric records a completed RDM exchange by outcome class.
//
// Outcome is one of the response classifications ("ok", "broadcast",
// "nack", "malformed", "transport_error"); cardinality stays bounded.
//
// Parameters:
//   - universe: DMX universe the command targeted
//   - pid: Parameter ID of the command
//   - outcome: Classification of the response
//   - latency: Round trip to the responder and back
func (c *Client) WriteCommandMetric(universe uint, pid uint16, outcome string, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"rdm_commands",
		map[string]string{
			"universe": fmt.Sprintf("%d", universe),
			"pid":      fmt.Sprintf("0x%04x", pid),
			"outcome":  outcome,
		},
		map[string]interface{}{
			"latency_ms": latency.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("gateway_stats",
//	    map[string]string{"gateway": "rdm-gw-001"},
//	    map[string]interface{}{"pending_commands": 3, "cached_labels": 42})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
