package mqtt

import "fmt"

// Topic prefixes for the gateway's MQTT namespace.
//
// The olad shim and the gateway share a pair of request/response topics;
// correlation is carried inside the JSON envelope, not in the topic.
const (
	// TopicPrefixRDM is the base for RDM command traffic with the olad shim.
	TopicPrefixRDM = "openlumen/rdm"

	// TopicPrefixCore is the base for gateway-originated events.
	TopicPrefixCore = "openlumen/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "openlumen/system"
)

// Topics provides builders for the gateway's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	requestTopic := topics.RDMRequest()
//	// Returns: "openlumen/rdm/request"
type Topics struct{}

// RDMRequest returns the topic the gateway publishes RDM commands on.
func (Topics) RDMRequest() string {
	return fmt.Sprintf("%s/request", TopicPrefixRDM)
}

// RDMResponse returns the topic the olad shim answers on.
func (Topics) RDMResponse() string {
	return fmt.Sprintf("%s/response", TopicPrefixRDM)
}

// RDMHealth returns the topic for olad shim health status.
func (Topics) RDMHealth() string {
	return fmt.Sprintf("%s/health", TopicPrefixRDM)
}

// CoreLabels returns the topic resolved device labels are published on.
// Retained, so late subscribers see the current label set.
func (Topics) CoreLabels(universe uint) string {
	return fmt.Sprintf("%s/labels/%d", TopicPrefixCore, universe)
}

// SystemStatus returns the gateway online/offline status topic.
// Used for both the LWT and graceful shutdown announcements.
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCoreLabels returns a pattern matching label sets for every universe.
func (Topics) AllCoreLabels() string {
	return fmt.Sprintf("%s/labels/+", TopicPrefixCore)
}
