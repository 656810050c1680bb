package controller

import (
	"errors"
	"sync"
	"testing"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

var (
	uidA = rdm.UID{Manufacturer: 0x0001, Device: 0x0a}
	uidB = rdm.UID{Manufacturer: 0x0001, Device: 0x0b}
)

func TestResolverQueuesManufacturerThenDevice(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA, uidB})

	// single-flight: only one request may be outstanding regardless of
	// how many resolutions are queued
	if got := transport.sendCount(); got != 1 {
		t.Fatalf("%d requests in flight, want 1", got)
	}

	first := transport.takeSent(t)
	if first.req.UID != uidA || first.req.PID != rdm.PIDManufacturerLabel {
		t.Fatalf("first request = %v %v, want A manufacturer", first.req.UID, first.req.PID)
	}

	// completing A's manufacturer fetch must advance to A's device
	// label, not B's manufacturer: strict FIFO of enqueue order
	first.complete(rdm.ResponseStatus{}, "Acme")

	second := transport.takeSent(t)
	if second.req.UID != uidA || second.req.PID != rdm.PIDDeviceLabel {
		t.Fatalf("second request = %v %v, want A device label", second.req.UID, second.req.PID)
	}
	second.complete(rdm.ResponseStatus{}, "Left Wash")

	third := transport.takeSent(t)
	if third.req.UID != uidB || third.req.PID != rdm.PIDManufacturerLabel {
		t.Fatalf("third request = %v %v, want B manufacturer", third.req.UID, third.req.PID)
	}
	third.complete(rdm.NackedStatus(rdm.NackUnknownPID), nil)

	fourth := transport.takeSent(t)
	fourth.complete(rdm.ResponseStatus{}, "Right Wash")

	if transport.sendCount() != 0 {
		t.Errorf("queue should be drained, %d still in flight", transport.sendCount())
	}

	labels := r.CachedLabels(1)
	if labels[uidA] != (Labels{Manufacturer: "Acme", Device: "Left Wash"}) {
		t.Errorf("uidA labels = %+v", labels[uidA])
	}
	// failed manufacturer fetch is swallowed: label stays empty
	if labels[uidB] != (Labels{Device: "Right Wash"}) {
		t.Errorf("uidB labels = %+v", labels[uidB])
	}
}

func TestResolverReReportEnqueuesNothing(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Acme")
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Spot")

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})
	if transport.sendCount() != 0 {
		t.Errorf("re-reporting a known uid queued %d requests, want 0", transport.sendCount())
	}
	if got := r.CachedLabels(1)[uidA]; got != (Labels{Manufacturer: "Acme", Device: "Spot"}) {
		t.Errorf("cached labels disturbed by re-report: %+v", got)
	}
}

func TestResolverEvictsDepartedUIDs(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})
	pending := transport.takeSent(t)

	// A disappears before its label fetch completes
	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidB})

	// the late completion must be dropped, not resurrect the entry
	pending.complete(rdm.ResponseStatus{}, "Acme")

	labels := r.CachedLabels(1)
	if _, ok := labels[uidA]; ok {
		t.Errorf("evicted uid still cached: %+v", labels[uidA])
	}
	if _, ok := labels[uidB]; !ok {
		t.Errorf("freshly reported uid missing from cache")
	}
}

func TestResolverSynchronousSendFailureDrainsQueue(t *testing.T) {
	transport := newFakeTransport()
	transport.sendErr = errors.New("not connected")
	r := NewResolver(transport)

	// both queued actions are attempted and dropped; the engine must
	// not stall with resolving stuck true
	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})
	if transport.sendCount() != 0 {
		t.Fatalf("requests recorded despite send failure")
	}

	// once the backend is reachable again a new report resolves normally
	transport.mu.Lock()
	transport.sendErr = nil
	transport.mu.Unlock()

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA, uidB})
	if transport.sendCount() != 1 {
		t.Fatalf("resolution stalled after earlier send failures")
	}
	if got := transport.takeSent(t); got.req.UID != uidB {
		t.Errorf("expected only uidB queued (uidA already tracked), got %v", got.req.UID)
	}
}

func TestResolverPruneUniverses(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Acme")
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Spot")
	r.NotifyDiscoveredUIDs(2, []rdm.UID{uidB})

	r.PruneUniverses([]uint{1})
	if len(r.CachedLabels(2)) != 0 {
		t.Errorf("universe 2 survived pruning")
	}
	if len(r.CachedLabels(1)) != 1 {
		t.Errorf("universe 1 lost state during pruning")
	}

	// idempotent: a second sweep with the same active set removes nothing
	r.PruneUniverses([]uint{1})
	if len(r.CachedLabels(1)) != 1 {
		t.Errorf("second identical prune removed live state")
	}
}

func TestResolverOnResolvedEvents(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	var mu sync.Mutex
	var events []LabelEvent
	r.SetOnResolved(func(e LabelEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Acme")
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Spot")

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Manufacturer != "Acme" || events[0].Device != "" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Manufacturer != "Acme" || events[1].Device != "Spot" {
		t.Errorf("second event = %+v", events[1])
	}
	if events[0].UID != uidA.String() || events[0].Universe != 1 {
		t.Errorf("event addressing = %+v", events[0])
	}
}

func TestResolverObserverRegisteredMidResolution(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	// membership arrives before anyone is listening
	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})

	var mu sync.Mutex
	var events []LabelEvent
	r.SetOnResolved(func(e LabelEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Acme")
	transport.takeSent(t).complete(rdm.ResponseStatus{}, "Spot")

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Manufacturer != "Acme" || events[1].Device != "Spot" {
		t.Errorf("final event = %+v", events[1])
	}
}

func TestResolverOpportunisticWriteThrough(t *testing.T) {
	transport := newFakeTransport()
	r := NewResolver(transport)

	r.NotifyDiscoveredUIDs(1, []rdm.UID{uidA})

	// a section read observed the manufacturer label before the
	// background queue got to it
	r.UpdateManufacturer(1, uidA, "Acme")
	if got := r.CachedLabels(1)[uidA].Manufacturer; got != "Acme" {
		t.Errorf("write-through missed: %q", got)
	}

	// updates for uids the resolver never tracked are dropped
	r.UpdateDevice(7, uidB, "Ghost")
	if len(r.CachedLabels(7)) != 0 {
		t.Errorf("write-through created state for unknown universe")
	}
}
