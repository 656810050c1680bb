// Package api implements the HTTP REST API and WebSocket server for the
// RDM gateway.
//
// This package provides:
//   - REST endpoints for universe UID listings, discovery, and device
//     section reads and writes
//   - WebSocket hub for real-time label-resolution broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between user interfaces and the RDM controller.
// Section operations flow from the API through the controller to the
// olad bridge over MQTT; resolved UID labels flow back through the
// resolver and are broadcast to WebSocket clients as they arrive.
//
// # Graceful Degradation
//
// The server operates while the broker link is down. Section requests
// fail with 503 backend_unavailable, but health, audit history, and
// WebSocket connections keep working.
package api
