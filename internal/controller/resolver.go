package controller

import (
	"sync"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// resolveAction selects which label a queued resolution fetches.
type resolveAction int

const (
	resolveManufacturer resolveAction = iota
	resolveDevice
)

// Labels is the resolved label pair for one UID.
type Labels struct {
	Manufacturer string `json:"manufacturer"`
	Device       string `json:"device"`
}

// labelEntry is the cache record for one UID within a universe. The
// active flag is a liveness mark used by the membership sweep, not a
// concurrency flag.
type labelEntry struct {
	manufacturer string
	device       string
	active       bool
}

// pendingResolution is one queued label fetch.
type pendingResolution struct {
	uid    rdm.UID
	action resolveAction
}

// universeState tracks resolution for a single universe. resolving is
// the single-flight gate: true while exactly one label request is in
// flight for this universe.
type universeState struct {
	resolved  map[rdm.UID]*labelEntry
	pending   []pendingResolution
	resolving bool
	active    bool
}

// LabelEvent is delivered to the resolver's observer whenever a cached
// label changes.
type LabelEvent struct {
	Universe uint   `json:"universe"`
	UID      string `json:"uid"`
	Labels
}

// Resolver keeps a best-effort, eventually consistent cache of
// UID → (manufacturer label, device label) per universe.
//
// Resolution within a universe is strictly sequential: at most one
// label request is outstanding per universe at any instant, in FIFO
// enqueue order. Different universes resolve independently. Failed
// fetches are swallowed; the cached label stays empty and the queue
// advances.
type Resolver struct {
	transport Transport
	logger    Logger

	mu         sync.Mutex
	universes  map[uint]*universeState
	onResolved func(LabelEvent) // observes label updates; called without r.mu held
}

// NewResolver creates a resolver issuing label requests through the
// given transport.
func NewResolver(transport Transport) *Resolver {
	return &Resolver{
		transport: transport,
		logger:    noopLogger{},
		universes: make(map[uint]*universeState),
	}
}

// SetLogger sets the logger for the resolver.
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// SetOnResolved registers an observer for label updates. Safe to call
// while resolution is in flight; updates already past the cache write
// may still invoke the previous observer.
func (r *Resolver) SetOnResolved(fn func(LabelEvent)) {
	r.mu.Lock()
	r.onResolved = fn
	r.mu.Unlock()
}

// observer snapshots the registered callback under the lock.
func (r *Resolver) observer() func(LabelEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onResolved
}

// NotifyDiscoveredUIDs reconciles a universe's label cache against the
// latest reported UID membership.
//
// UIDs seen for the first time get an empty cache entry and two queued
// resolutions (manufacturer then device). UIDs already tracked keep
// their cached labels. Entries for UIDs absent from the report are
// evicted, which bounds the cache to currently visible devices. If no
// resolution cycle is running for the universe, one is kicked off.
func (r *Resolver) NotifyDiscoveredUIDs(universe uint, uids []rdm.UID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.universeStateOrCreate(universe)

	// two-pass reconciliation: mark everything stale, re-mark what the
	// report still contains, then sweep
	for _, entry := range state.resolved {
		entry.active = false
	}

	for _, uid := range uids {
		if entry, ok := state.resolved[uid]; ok {
			entry.active = true
			continue
		}
		state.resolved[uid] = &labelEntry{active: true}
		state.pending = append(state.pending,
			pendingResolution{uid: uid, action: resolveManufacturer},
			pendingResolution{uid: uid, action: resolveDevice},
		)
		r.logger.Debug("queued uid for label resolution", "universe", universe, "uid", uid.String())
	}

	for uid, entry := range state.resolved {
		if !entry.active {
			delete(state.resolved, uid)
			r.logger.Debug("evicted stale uid", "universe", universe, "uid", uid.String())
		}
	}

	if !state.resolving {
		r.resolveNextLocked(universe, state)
	}
}

// PruneUniverses drops all state for universes absent from the given
// active set. Runs the same mark/sweep shape as the per-universe UID
// reconciliation. Idempotent.
func (r *Resolver) PruneUniverses(active []uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, state := range r.universes {
		state.active = false
	}
	for _, id := range active {
		if state, ok := r.universes[id]; ok {
			state.active = true
		}
	}
	for id, state := range r.universes {
		if !state.active {
			delete(r.universes, id)
			r.logger.Debug("removed universe from label cache", "universe", id)
		}
	}
}

// CachedLabels returns a snapshot of the resolved labels for a
// universe. The snapshot is a copy; callers may retain it.
func (r *Resolver) CachedLabels(universe uint) map[rdm.UID]Labels {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[rdm.UID]Labels)
	state, ok := r.universes[universe]
	if !ok {
		return out
	}
	for uid, entry := range state.resolved {
		out[uid] = Labels{Manufacturer: entry.manufacturer, Device: entry.device}
	}
	return out
}

// UpdateManufacturer opportunistically writes a manufacturer label
// fetched by a section read into the cache. Writes to untracked UIDs
// are dropped.
func (r *Resolver) UpdateManufacturer(universe uint, uid rdm.UID, label string) {
	r.updateLabel(universe, uid, resolveManufacturer, label)
}

// UpdateDevice opportunistically writes a device label fetched by a
// section read into the cache. Writes to untracked UIDs are dropped.
func (r *Resolver) UpdateDevice(universe uint, uid rdm.UID, label string) {
	r.updateLabel(universe, uid, resolveDevice, label)
}

func (r *Resolver) updateLabel(universe uint, uid rdm.UID, action resolveAction, label string) {
	r.mu.Lock()
	event, changed := r.storeLabelLocked(universe, uid, action, label)
	r.mu.Unlock()

	if fn := r.observer(); changed && fn != nil {
		fn(event)
	}
}

// storeLabelLocked writes a label into the cache if the UID is still
// tracked. Returns the event to publish and whether a write happened.
func (r *Resolver) storeLabelLocked(universe uint, uid rdm.UID, action resolveAction, label string) (LabelEvent, bool) {
	state, ok := r.universes[universe]
	if !ok {
		return LabelEvent{}, false
	}
	entry, ok := state.resolved[uid]
	if !ok {
		// evicted by a later membership sweep; drop silently
		return LabelEvent{}, false
	}

	if action == resolveManufacturer {
		entry.manufacturer = label
	} else {
		entry.device = label
	}

	return LabelEvent{
		Universe: universe,
		UID:      uid.String(),
		Labels:   Labels{Manufacturer: entry.manufacturer, Device: entry.device},
	}, true
}

// resolveNextLocked pops the resolution queue and issues the next label
// request. If the transport rejects a request synchronously the queue
// entry is dropped and the next one is attempted immediately, so an
// unreachable backend cannot stall the cycle. When the queue drains the
// single-flight gate opens again.
//
// Caller must hold r.mu.
func (r *Resolver) resolveNextLocked(universe uint, state *universeState) {
	for {
		if len(state.pending) == 0 {
			state.resolving = false
			return
		}
		state.resolving = true

		next := state.pending[0]
		state.pending = state.pending[1:]

		pid := rdm.PIDManufacturerLabel
		if next.action == resolveDevice {
			pid = rdm.PIDDeviceLabel
		}

		err := r.transport.Send(Request{
			Universe: universe,
			UID:      next.uid,
			PID:      pid,
		}, r.labelCompletion(universe, next.uid, next.action))
		if err == nil {
			r.logger.Debug("sent label request",
				"universe", universe, "uid", next.uid.String(), "pid", pid)
			return
		}

		// could not send; keep draining rather than stalling
		r.logger.Warn("label request not sent",
			"universe", universe, "uid", next.uid.String(), "error", err)
	}
}

// labelCompletion builds the continuation for one label request. Both
// success and failure advance the queue; failures are not retried.
func (r *Resolver) labelCompletion(universe uint, uid rdm.UID, action resolveAction) CompletionFunc {
	return func(status rdm.ResponseStatus, payload any) {
		var (
			event   LabelEvent
			changed bool
		)

		r.mu.Lock()
		if status.Succeeded() {
			if label, ok := payload.(string); ok {
				event, changed = r.storeLabelLocked(universe, uid, action, label)
			}
		} else if msg := status.ErrorString(); msg != "" {
			r.logger.Debug("label fetch failed",
				"universe", universe, "uid", uid.String(), "error", msg)
		}
		if state, ok := r.universes[universe]; ok {
			r.resolveNextLocked(universe, state)
		}
		r.mu.Unlock()

		if fn := r.observer(); changed && fn != nil {
			fn(event)
		}
	}
}

// universeStateOrCreate returns the state for a universe, creating it
// on first reference.
func (r *Resolver) universeStateOrCreate(universe uint) *universeState {
	state, ok := r.universes[universe]
	if !ok {
		state = &universeState{
			resolved: make(map[rdm.UID]*labelEntry),
			active:   true,
		}
		r.universes[universe] = state
		r.logger.Debug("tracking new universe", "universe", universe)
	}
	return state
}
