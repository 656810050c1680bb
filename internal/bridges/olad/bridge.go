package olad

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openlumen/rdm-gateway/internal/controller"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/mqtt"
	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// Bridge operation constants.
const (
	// defaultCommandTimeout bounds the wait for a single RDM exchange.
	defaultCommandTimeout = 5 * time.Second

	// defaultDiscoveryTimeout bounds full-universe discovery, which walks
	// the binary search tree of the whole UID space.
	defaultDiscoveryTimeout = 60 * time.Second

	// sweepInterval is how often expired pending commands are reaped.
	sweepInterval = 500 * time.Millisecond

	// publishQoS is the QoS used for request envelopes. At-least-once;
	// the shim deduplicates by envelope ID.
	publishQoS = 1
)

// MQTTClient is the interface for MQTT operations.
// Satisfied by *mqtt.Client; narrowed for mocking in tests.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

var _ MQTTClient = (*mqtt.Client)(nil)

// Logger is the optional structured logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// pendingKind distinguishes completion signatures in the pending table.
type pendingKind int

const (
	kindCommand pendingKind = iota
	kindFetch
	kindDiscovery
	kindListUniverses
)

// pending is one in-flight request awaiting its response envelope.
type pending struct {
	kind     pendingKind
	pid      rdm.PID
	set      bool
	deadline time.Time

	complete          controller.CompletionFunc
	fetchComplete     func([]rdm.UID, error)
	discoveryComplete func(error)
	universesComplete func([]uint, error)
}

// Bridge carries RDM commands to an olad shim over MQTT and implements
// controller.Transport.
//
// Completion callbacks fire on the paho handler goroutine (responses)
// or the sweeper goroutine (timeouts), never on the sender's goroutine.
type Bridge struct {
	mqtt   MQTTClient
	topics mqtt.Topics

	commandTimeout   time.Duration
	discoveryTimeout time.Duration

	mu      sync.Mutex
	pending map[string]*pending
	closed  bool

	// Last retained health report from the shim.
	healthMu   sync.RWMutex
	lastHealth *HealthMessage

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// Options holds configuration for creating a bridge.
type Options struct {
	// Client is the MQTT client implementation.
	Client MQTTClient

	// CommandTimeout bounds single RDM exchanges. Zero means the default.
	CommandTimeout time.Duration

	// DiscoveryTimeout bounds full-universe discovery. Zero means the default.
	DiscoveryTimeout time.Duration

	// Logger is optional.
	Logger Logger
}

// NewBridge creates a bridge instance. Call Start() to begin operation.
func NewBridge(opts Options) (*Bridge, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("olad: MQTT client is required")
	}

	b := &Bridge{
		mqtt:             opts.Client,
		commandTimeout:   opts.CommandTimeout,
		discoveryTimeout: opts.DiscoveryTimeout,
		pending:          make(map[string]*pending),
		done:             make(chan struct{}),
		logger:           opts.Logger,
	}
	if b.commandTimeout <= 0 {
		b.commandTimeout = defaultCommandTimeout
	}
	if b.discoveryTimeout <= 0 {
		b.discoveryTimeout = defaultDiscoveryTimeout
	}
	if b.logger == nil {
		b.logger = noopLogger{}
	}
	return b, nil
}

// Start subscribes to the shim's response and health topics and starts
// the timeout sweeper.
func (b *Bridge) Start() error {
	if err := b.mqtt.Subscribe(b.topics.RDMResponse(), publishQoS, b.handleResponse); err != nil {
		return fmt.Errorf("subscribe to responses: %w", err)
	}
	if err := b.mqtt.Subscribe(b.topics.RDMHealth(), publishQoS, b.handleHealth); err != nil {
		return fmt.Errorf("subscribe to health: %w", err)
	}

	b.wg.Add(1)
	go b.sweep()

	b.logInfo("olad bridge started",
		"command_timeout", b.commandTimeout.String(),
		"discovery_timeout", b.discoveryTimeout.String())
	return nil
}

// Close shuts the bridge down. Every still-pending command completes
// with a transport failure.
func (b *Bridge) Close() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		orphans := b.pending
		b.pending = make(map[string]*pending)
		b.mu.Unlock()

		close(b.done)
		b.wg.Wait()

		if len(orphans) > 0 {
			// Callbacks may call back into the bridge; run them off
			// this goroutine and don't wait.
			go failAll(orphans, "bridge shutting down")
		}

		b.logInfo("olad bridge stopped", "orphaned", len(orphans))
	})
}

// Send implements controller.Transport.
func (b *Bridge) Send(req controller.Request, complete controller.CompletionFunc) error {
	action := ActionGet
	if req.Set {
		action = ActionSet
	}

	env := RequestEnvelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Universe:  req.Universe,
		UID:       req.UID.String(),
		PID:       uint16(req.PID),
	}
	if req.Params != nil {
		params, err := json.Marshal(req.Params)
		if err != nil {
			return fmt.Errorf("olad: encode params: %w", err)
		}
		env.Params = params
	}

	entry := &pending{
		kind:     kindCommand,
		pid:      req.PID,
		set:      req.Set,
		deadline: time.Now().Add(b.commandTimeout),
		complete: complete,
	}
	return b.dispatch(env, entry)
}

// FetchUIDs implements controller.Transport.
func (b *Bridge) FetchUIDs(universe uint, complete func([]rdm.UID, error)) error {
	env := RequestEnvelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    ActionFetchUIDs,
		Universe:  universe,
	}
	entry := &pending{
		kind:          kindFetch,
		deadline:      time.Now().Add(b.commandTimeout),
		fetchComplete: complete,
	}
	return b.dispatch(env, entry)
}

// RunDiscovery implements controller.Transport.
func (b *Bridge) RunDiscovery(universe uint, full bool, complete func(error)) error {
	env := RequestEnvelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    ActionDiscovery,
		Universe:  universe,
		Full:      full,
	}
	entry := &pending{
		kind:              kindDiscovery,
		deadline:          time.Now().Add(b.discoveryTimeout),
		discoveryComplete: complete,
	}
	return b.dispatch(env, entry)
}

// ListUniverses asks the shim for the universes olad currently exposes.
// Used by the label-cache maintenance poll.
func (b *Bridge) ListUniverses(complete func([]uint, error)) error {
	env := RequestEnvelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    ActionListUniverses,
	}
	entry := &pending{
		kind:              kindListUniverses,
		deadline:          time.Now().Add(b.commandTimeout),
		universesComplete: complete,
	}
	return b.dispatch(env, entry)
}

// dispatch registers the pending entry and publishes the envelope. On
// any error the entry is not retained and the completion never fires.
func (b *Bridge) dispatch(env RequestEnvelope, entry *pending) error {
	if !b.mqtt.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(&env)
	if err != nil {
		return fmt.Errorf("olad: encode envelope: %w", err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.pending[env.ID] = entry
	b.mu.Unlock()

	if err := b.mqtt.Publish(b.topics.RDMRequest(), payload, publishQoS, false); err != nil {
		b.mu.Lock()
		delete(b.pending, env.ID)
		b.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	b.logDebug("request dispatched",
		"id", env.ID,
		"action", env.Action,
		"universe", env.Universe,
		"uid", env.UID)
	return nil
}

// handleResponse correlates a response envelope with its pending entry
// and fires the completion. Runs on the paho handler goroutine.
func (b *Bridge) handleResponse(_ string, payload []byte) error {
	var env ResponseEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("olad: decode response: %w", err)
	}

	b.mu.Lock()
	entry, ok := b.pending[env.ID]
	if ok {
		delete(b.pending, env.ID)
	}
	b.mu.Unlock()

	if !ok {
		// Late reply after timeout, or a duplicate. Nothing to complete.
		b.logDebug("unmatched response dropped", "id", env.ID)
		return nil
	}

	switch entry.kind {
	case kindCommand:
		status := env.toStatus()
		var decoded any
		if status.Succeeded() && !entry.set {
			var err error
			decoded, err = decodePayload(entry.pid, env.Payload)
			if err != nil {
				status = rdm.MalformedStatus(err.Error())
				decoded = nil
			}
		}
		entry.complete(status, decoded)

	case kindFetch:
		if env.Status == StatusOK {
			entry.fetchComplete(parseUIDList(env.UIDs), nil)
		} else {
			entry.fetchComplete(nil, statusError(env))
		}

	case kindDiscovery:
		if env.Status == StatusOK {
			entry.discoveryComplete(nil)
		} else {
			entry.discoveryComplete(statusError(env))
		}

	case kindListUniverses:
		if env.Status == StatusOK {
			entry.universesComplete(env.Universes, nil)
		} else {
			entry.universesComplete(nil, statusError(env))
		}
	}
	return nil
}

// handleHealth tracks the shim's retained health reports.
func (b *Bridge) handleHealth(_ string, payload []byte) error {
	var msg HealthMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("olad: decode health: %w", err)
	}

	b.healthMu.Lock()
	b.lastHealth = &msg
	b.healthMu.Unlock()

	if msg.Status != "healthy" {
		b.logWarn("olad shim health degraded",
			"status", msg.Status,
			"olad_connected", msg.OladConnected)
	}
	return nil
}

// LastHealth returns the most recent shim health report, if any arrived.
func (b *Bridge) LastHealth() (HealthMessage, bool) {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	if b.lastHealth == nil {
		return HealthMessage{}, false
	}
	return *b.lastHealth, true
}

// Healthy reports whether the broker link is up and the shim's last
// report, if any, was healthy.
func (b *Bridge) Healthy() bool {
	if !b.mqtt.IsConnected() {
		return false
	}
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.lastHealth == nil || b.lastHealth.Status == "healthy"
}

// sweep reaps pending commands whose deadline has passed and completes
// them with a transport failure.
func (b *Bridge) sweep() {
	defer b.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case now := <-ticker.C:
			b.mu.Lock()
			var expired map[string]*pending
			for id, entry := range b.pending {
				if now.After(entry.deadline) {
					if expired == nil {
						expired = make(map[string]*pending)
					}
					expired[id] = entry
					delete(b.pending, id)
				}
			}
			b.mu.Unlock()

			if len(expired) > 0 {
				b.logWarn("requests timed out", "count", len(expired))
				failAll(expired, "timeout waiting for olad response")
			}
		}
	}
}

// failAll completes every entry with a transport failure carrying the
// given detail text.
func failAll(entries map[string]*pending, detail string) {
	for _, entry := range entries {
		switch entry.kind {
		case kindCommand:
			entry.complete(rdm.TransportError(detail), nil)
		case kindFetch:
			entry.fetchComplete(nil, fmt.Errorf("olad: %s", detail))
		case kindDiscovery:
			entry.discoveryComplete(fmt.Errorf("olad: %s", detail))
		case kindListUniverses:
			entry.universesComplete(nil, fmt.Errorf("olad: %s", detail))
		}
	}
}

// statusError renders a non-ok envelope as an error for the UID fetch
// and discovery paths, which have no classified-status channel.
func statusError(env ResponseEnvelope) error {
	status := env.toStatus()
	if err := status.Err(); err != nil {
		return err
	}
	return fmt.Errorf("olad: unexpected response status %q", env.Status)
}

// PendingCount returns the number of in-flight requests.
func (b *Bridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	if logger == nil {
		logger = noopLogger{}
	}
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logDebug(msg string, args ...any) { b.getLogger().Debug(msg, args...) }
func (b *Bridge) logInfo(msg string, args ...any)  { b.getLogger().Info(msg, args...) }
func (b *Bridge) logWarn(msg string, args ...any)  { b.getLogger().Warn(msg, args...) }
