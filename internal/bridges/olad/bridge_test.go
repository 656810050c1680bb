package olad

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openlumen/rdm-gateway/internal/controller"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/mqtt"
	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// The bridge must accept the fake wherever it accepts the real client.
var _ MQTTClient = (*fakeMQTT)(nil)

// fakeMQTT records publishes and lets tests inject inbound messages on
// subscribed topics.
type fakeMQTT struct {
	mu         sync.Mutex
	connected  bool
	published  []publishedMsg
	handlers   map[string]mqtt.MessageHandler
	publishErr error
}

type publishedMsg struct {
	topic   string
	payload []byte
	qos     byte
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

func (f *fakeMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMsg{topic: topic, payload: payload, qos: qos})
	return nil
}

func (f *fakeMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeMQTT) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// lastRequest decodes the most recent published request envelope.
func (f *fakeMQTT) lastRequest(t *testing.T) RequestEnvelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		t.Fatal("no requests published")
	}
	var env RequestEnvelope
	if err := json.Unmarshal(f.published[len(f.published)-1].payload, &env); err != nil {
		t.Fatalf("decode published envelope: %v", err)
	}
	return env
}

// deliver pushes a message to the handler registered for topic, from a
// separate goroutine the way paho does, and waits for it to finish.
func (f *fakeMQTT) deliver(t *testing.T, topic string, v any) {
	t.Helper()
	f.mu.Lock()
	handler, ok := f.handlers[topic]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no handler subscribed on %s", topic)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- handler(topic, payload) }()
	if err := <-done; err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
}

func startBridge(t *testing.T, client *fakeMQTT, opts Options) *Bridge {
	t.Helper()
	opts.Client = client
	b, err := NewBridge(opts)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func testUID(t *testing.T) rdm.UID {
	t.Helper()
	uid, err := rdm.ParseUID("7a70:00000001")
	if err != nil {
		t.Fatalf("ParseUID: %v", err)
	}
	return uid
}

func TestNewBridgeRequiresClient(t *testing.T) {
	if _, err := NewBridge(Options{}); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestSendNotConnected(t *testing.T) {
	client := newFakeMQTT()
	client.connected = false
	b := startBridge(t, client, Options{})

	err := b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(rdm.ResponseStatus, any) {})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSendPublishFailureUnregisters(t *testing.T) {
	client := newFakeMQTT()
	client.publishErr = errors.New("broker gone")
	b := startBridge(t, client, Options{})

	err := b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(rdm.ResponseStatus, any) {})
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected ErrPublishFailed, got %v", err)
	}
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("pending count = %d, want 0", n)
	}
}

func TestSendGetRoundTrip(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	results := make(chan string, 1)
	err := b.Send(controller.Request{Universe: 3, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(status rdm.ResponseStatus, payload any) {
			if !status.Succeeded() {
				t.Errorf("status = %+v, want success", status)
			}
			label, ok := payload.(string)
			if !ok {
				t.Errorf("payload type %T, want string", payload)
			}
			results <- label
		})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	env := client.lastRequest(t)
	if env.Action != ActionGet {
		t.Errorf("action = %q, want %q", env.Action, ActionGet)
	}
	if env.Universe != 3 {
		t.Errorf("universe = %d, want 3", env.Universe)
	}
	if env.UID != "7a70:00000001" {
		t.Errorf("uid = %q, want 7a70:00000001", env.UID)
	}
	if env.PID != uint16(rdm.PIDDeviceLabel) {
		t.Errorf("pid = %#04x, want %#04x", env.PID, uint16(rdm.PIDDeviceLabel))
	}

	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{
		ID:      env.ID,
		Status:  StatusOK,
		Payload: json.RawMessage(`"Stage Left"`),
	})

	select {
	case label := <-results:
		if label != "Stage Left" {
			t.Errorf("label = %q, want %q", label, "Stage Left")
		}
	case <-time.After(time.Second):
		t.Fatal("completion never fired")
	}
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("pending count = %d, want 0", n)
	}
}

func TestSendSetCarriesParams(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	statuses := make(chan rdm.ResponseStatus, 1)
	err := b.Send(controller.Request{
		Universe: 1,
		UID:      testUID(t),
		PID:      rdm.PIDDMXStartAddress,
		Set:      true,
		Params:   uint16(101),
	}, func(status rdm.ResponseStatus, payload any) {
		if payload != nil {
			t.Errorf("set completion payload = %v, want nil", payload)
		}
		statuses <- status
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	env := client.lastRequest(t)
	if env.Action != ActionSet {
		t.Errorf("action = %q, want %q", env.Action, ActionSet)
	}
	var addr uint16
	if err := json.Unmarshal(env.Params, &addr); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if addr != 101 {
		t.Errorf("params = %d, want 101", addr)
	}

	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{ID: env.ID, Status: StatusOK})

	select {
	case status := <-statuses:
		if !status.Succeeded() {
			t.Errorf("status = %+v, want success", status)
		}
	case <-time.After(time.Second):
		t.Fatal("completion never fired")
	}
}

func TestNackResponse(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	statuses := make(chan rdm.ResponseStatus, 1)
	err := b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel, Set: true, Params: "x"},
		func(status rdm.ResponseStatus, _ any) { statuses <- status })
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	env := client.lastRequest(t)
	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{
		ID:         env.ID,
		Status:     StatusNack,
		NackReason: uint16(rdm.NackWriteProtect),
	})

	status := <-statuses
	if status.Type != rdm.ResponseNacked {
		t.Fatalf("status type = %v, want nacked", status.Type)
	}
	if status.NackReason != rdm.NackWriteProtect {
		t.Errorf("nack reason = %v, want write protect", status.NackReason)
	}
}

func TestMalformedPayloadDecode(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	statuses := make(chan rdm.ResponseStatus, 1)
	err := b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDMXStartAddress},
		func(status rdm.ResponseStatus, payload any) {
			if payload != nil {
				t.Errorf("payload = %v, want nil on decode failure", payload)
			}
			statuses <- status
		})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	env := client.lastRequest(t)
	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{
		ID:      env.ID,
		Status:  StatusOK,
		Payload: json.RawMessage(`"not a number"`),
	})

	status := <-statuses
	if status.Type != rdm.ResponseMalformed {
		t.Fatalf("status type = %v, want malformed", status.Type)
	}
}

func TestUnknownStatusTreatedAsMalformed(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	statuses := make(chan rdm.ResponseStatus, 1)
	err := b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(status rdm.ResponseStatus, _ any) { statuses <- status })
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	env := client.lastRequest(t)
	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{ID: env.ID, Status: "sideways"})

	status := <-statuses
	if status.Type != rdm.ResponseMalformed {
		t.Fatalf("status type = %v, want malformed", status.Type)
	}
}

func TestUnmatchedResponseIgnored(t *testing.T) {
	client := newFakeMQTT()
	startBridge(t, client, Options{})

	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{ID: "never-sent", Status: StatusOK})
}

func TestFetchUIDs(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	type result struct {
		uids []rdm.UID
		err  error
	}
	results := make(chan result, 1)
	err := b.FetchUIDs(4, func(uids []rdm.UID, err error) {
		results <- result{uids: uids, err: err}
	})
	if err != nil {
		t.Fatalf("FetchUIDs: %v", err)
	}

	env := client.lastRequest(t)
	if env.Action != ActionFetchUIDs {
		t.Errorf("action = %q, want %q", env.Action, ActionFetchUIDs)
	}
	if env.Universe != 4 {
		t.Errorf("universe = %d, want 4", env.Universe)
	}

	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{
		ID:     env.ID,
		Status: StatusOK,
		UIDs:   []string{"7a70:00000001", "7a70:00000002", "garbage"},
	})

	res := <-results
	if res.err != nil {
		t.Fatalf("fetch error: %v", res.err)
	}
	if len(res.uids) != 2 {
		t.Fatalf("got %d uids, want 2 (unparseable entries dropped)", len(res.uids))
	}
	if got := res.uids[1].String(); got != "7a70:00000002" {
		t.Errorf("uid[1] = %q, want 7a70:00000002", got)
	}
}

func TestFetchUIDsTransportError(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	errs := make(chan error, 1)
	if err := b.FetchUIDs(1, func(_ []rdm.UID, err error) { errs <- err }); err != nil {
		t.Fatalf("FetchUIDs: %v", err)
	}

	env := client.lastRequest(t)
	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{
		ID:     env.ID,
		Status: StatusTransportError,
		Detail: "universe offline",
	})

	if err := <-errs; err == nil {
		t.Fatal("expected error for transport failure")
	}
}

func TestRunDiscovery(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	errs := make(chan error, 1)
	if err := b.RunDiscovery(2, true, func(err error) { errs <- err }); err != nil {
		t.Fatalf("RunDiscovery: %v", err)
	}

	env := client.lastRequest(t)
	if env.Action != ActionDiscovery {
		t.Errorf("action = %q, want %q", env.Action, ActionDiscovery)
	}
	if !env.Full {
		t.Error("full flag not set")
	}

	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{ID: env.ID, Status: StatusOK})

	if err := <-errs; err != nil {
		t.Fatalf("discovery error: %v", err)
	}
}

func TestListUniverses(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	type result struct {
		universes []uint
		err       error
	}
	results := make(chan result, 1)
	err := b.ListUniverses(func(universes []uint, err error) {
		results <- result{universes: universes, err: err}
	})
	if err != nil {
		t.Fatalf("ListUniverses: %v", err)
	}

	env := client.lastRequest(t)
	if env.Action != ActionListUniverses {
		t.Errorf("action = %q, want %q", env.Action, ActionListUniverses)
	}

	client.deliver(t, mqtt.Topics{}.RDMResponse(), ResponseEnvelope{
		ID:        env.ID,
		Status:    StatusOK,
		Universes: []uint{0, 1, 4},
	})

	res := <-results
	if res.err != nil {
		t.Fatalf("list error: %v", res.err)
	}
	if len(res.universes) != 3 || res.universes[2] != 4 {
		t.Errorf("universes = %v, want [0 1 4]", res.universes)
	}
}

func TestTimeoutCompletesWithTransportError(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{CommandTimeout: 50 * time.Millisecond})

	statuses := make(chan rdm.ResponseStatus, 1)
	err := b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(status rdm.ResponseStatus, _ any) { statuses <- status })
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case status := <-statuses:
		if status.Type != rdm.ResponseTransportError {
			t.Fatalf("status type = %v, want transport error", status.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout sweep never fired")
	}
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("pending count = %d, want 0", n)
	}
}

func TestCloseFailsPending(t *testing.T) {
	client := newFakeMQTT()
	b, err := NewBridge(Options{Client: client})
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	statuses := make(chan rdm.ResponseStatus, 1)
	err = b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(status rdm.ResponseStatus, _ any) { statuses <- status })
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	b.Close()

	select {
	case status := <-statuses:
		if status.Type != rdm.ResponseTransportError {
			t.Fatalf("status type = %v, want transport error", status.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("pending completion never fired on close")
	}

	err = b.Send(controller.Request{Universe: 1, UID: testUID(t), PID: rdm.PIDDeviceLabel},
		func(rdm.ResponseStatus, any) {})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after close = %v, want ErrClosed", err)
	}
}

func TestHealthTracking(t *testing.T) {
	client := newFakeMQTT()
	b := startBridge(t, client, Options{})

	if _, ok := b.LastHealth(); ok {
		t.Fatal("expected no health report before any message")
	}
	if !b.Healthy() {
		t.Fatal("bridge with no health report yet should count as healthy")
	}

	client.deliver(t, mqtt.Topics{}.RDMHealth(), HealthMessage{
		Shim:          "olad-shim-01",
		Status:        "degraded",
		OladConnected: false,
	})

	health, ok := b.LastHealth()
	if !ok {
		t.Fatal("expected a health report")
	}
	if health.Shim != "olad-shim-01" {
		t.Errorf("shim = %q, want olad-shim-01", health.Shim)
	}
	if b.Healthy() {
		t.Error("degraded shim should make bridge unhealthy")
	}
}
