// Package influxdb provides InfluxDB connectivity for the RDM gateway.
//
// It wraps the official influxdb-client-go v2 library with gateway
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - RDM sensor present-value readings
//   - Discovery pass outcomes per universe
//   - Command latency and outcome classification
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "openlumen",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a sensor reading
//	client.WriteSensorReading(1, "7a70:00000001", 0, 44)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps network overhead low when sensor polling is frequent.
package influxdb
