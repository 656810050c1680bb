// Package mqtt provides MQTT client connectivity for the RDM gateway.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The gateway uses MQTT as the message bus between itself and the olad
// shim that owns the physical RDM transport. The broker (Mosquitto)
// decouples the gateway from olad's process lifecycle.
//
//	RDM Gateway ↔ MQTT Broker ↔ olad shim ↔ DMX/RDM universes
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to olad shim responses
//	err = client.Subscribe(mqtt.Topics{}.RDMResponse(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a command envelope
//	client.Publish(mqtt.Topics{}.RDMRequest(), envelope, 1, false)
package mqtt
