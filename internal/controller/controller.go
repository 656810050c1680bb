package controller

import (
	"context"
	"fmt"
	"sort"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SensorRecorder receives successful sensor present-value reads for
// telemetry. Implementations must not block.
type SensorRecorder interface {
	WriteSensorReading(universe uint, uid string, sensor uint8, value float64)
}

// WriteAuditor records completed section writes.
type WriteAuditor interface {
	RecordWrite(ctx context.Context, universe uint, uid, section string, params map[string]string, errText string)
}

// UIDEntry is one row of a fetched UID list, annotated with whatever
// labels the resolver has cached so far.
type UIDEntry struct {
	UID            rdm.UID `json:"-"`
	ManufacturerID uint16  `json:"manufacturer_id"`
	DeviceID       uint32  `json:"device_id"`
	Manufacturer   string  `json:"manufacturer"`
	Device         string  `json:"device"`
}

// Controller is the command-orchestration core of the gateway. It owns
// the section registry, the discovery engine and the UID label
// resolver, and turns logical operations into sequenced chains of RDM
// exchanges over the Transport.
//
// Arbitrarily many section chains may be in flight concurrently; each
// owns its accumulator exclusively. The resolver additionally enforces
// one outstanding label request per universe.
type Controller struct {
	transport Transport
	resolver  *Resolver
	sections  map[string]*sectionEntry
	logger    Logger

	recorder SensorRecorder // optional
	auditor  WriteAuditor   // optional
}

// New creates a controller speaking through the given transport.
func New(transport Transport) *Controller {
	c := &Controller{
		transport: transport,
		resolver:  NewResolver(transport),
		logger:    noopLogger{},
	}
	c.buildRegistry()
	return c
}

// SetLogger sets the logger for the controller and its resolver.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
	c.resolver.SetLogger(logger)
}

// SetSensorRecorder wires an optional telemetry sink for sensor reads.
func (c *Controller) SetSensorRecorder(recorder SensorRecorder) {
	c.recorder = recorder
}

// SetWriteAuditor wires an optional audit sink for section writes.
func (c *Controller) SetWriteAuditor(auditor WriteAuditor) {
	c.auditor = auditor
}

// Resolver exposes the label resolver for event wiring.
func (c *Controller) Resolver() *Resolver {
	return c.resolver
}

// Dispatch executes the read or write chain of a section.
//
// Reads return the section payload. Writes return a nil section; their
// outcome is the error value. ErrSectionNotFound is returned for ids
// absent from the registry; ErrValidation for bad parameters (no
// network request was made); ErrBackendUnavailable when the transport
// could not carry a request; an *rdm.StatusError when the device
// rejected it or replied malformed.
func (c *Controller) Dispatch(ctx context.Context, universe uint, uid rdm.UID, sectionID string, isWrite bool, params Params) (*Section, error) {
	entry, ok := c.sections[sectionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
	}
	if params == nil {
		params = Params{}
	}

	if !isWrite {
		return entry.read(ctx, universe, uid, params)
	}

	if entry.write == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotWritable, sectionID)
	}

	err := entry.write(ctx, universe, uid, params)
	if c.auditor != nil {
		errText := ""
		if err != nil {
			errText = err.Error()
		}
		c.auditor.RecordWrite(ctx, universe, uid.String(), sectionID, params, errText)
	}
	return nil, err
}

// FetchUIDs retrieves the current UID membership of a universe from the
// backend, feeds it to the label resolver (queueing resolution for
// newcomers and evicting leavers) and returns the list annotated with
// cached labels, sorted by UID.
func (c *Controller) FetchUIDs(ctx context.Context, universe uint) ([]UIDEntry, error) {
	type result struct {
		uids []rdm.UID
		err  error
	}
	done := make(chan result, 1)

	err := c.transport.FetchUIDs(universe, func(uids []rdm.UID, err error) {
		done <- result{uids: uids, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, res.err)
	}

	// Annotate before the notify so freshly evicted labels don't leak
	// back in; OLA annotates from the pre-sweep state, but entries for
	// the reported UIDs survive the sweep either way.
	c.resolver.NotifyDiscoveredUIDs(universe, res.uids)
	labels := c.resolver.CachedLabels(universe)

	entries := make([]UIDEntry, 0, len(res.uids))
	for _, uid := range res.uids {
		entries = append(entries, UIDEntry{
			UID:            uid,
			ManufacturerID: uid.Manufacturer,
			DeviceID:       uid.Device,
			Manufacturer:   labels[uid].Manufacturer,
			Device:         labels[uid].Device,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UID.Compare(entries[j].UID) < 0
	})
	return entries, nil
}

// RunDiscovery asks the backend to run RDM discovery on a universe.
func (c *Controller) RunDiscovery(ctx context.Context, universe uint, full bool) error {
	done := make(chan error, 1)

	err := c.transport.RunDiscovery(universe, full, func(err error) {
		done <- err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SupportedPIDs fetches the raw supported-parameter list of a device.
// Not used by the UI but handy for debugging.
func (c *Controller) SupportedPIDs(ctx context.Context, universe uint, uid rdm.UID) ([]rdm.PID, error) {
	payload, status, err := c.get(universe, uid, rdm.PIDSupportedParameters, nil)
	if err != nil {
		return nil, err
	}
	if !status.Succeeded() {
		return nil, statusFailure(status)
	}
	pids, _ := payload.([]rdm.PID)
	return pids, nil
}

// CachedLabels returns a read-only snapshot of the resolved labels for
// a universe.
func (c *Controller) CachedLabels(universe uint) map[rdm.UID]Labels {
	return c.resolver.CachedLabels(universe)
}

// NotifyActiveUniverses forwards the periodic live-universe list to the
// resolver's pruning sweep.
func (c *Controller) NotifyActiveUniverses(active []uint) {
	c.resolver.PruneUniverses(active)
}

// get issues one GET exchange and waits for its classified completion.
// The returned error is non-nil only when the request could not be
// carried at all; classified outcomes are in status.
func (c *Controller) get(universe uint, uid rdm.UID, pid rdm.PID, params any) (any, rdm.ResponseStatus, error) {
	return c.roundTrip(Request{Universe: universe, UID: uid, PID: pid, Params: params})
}

// set issues one SET exchange and waits for its classified completion.
func (c *Controller) set(universe uint, uid rdm.UID, pid rdm.PID, params any) (rdm.ResponseStatus, error) {
	_, status, err := c.roundTrip(Request{Universe: universe, UID: uid, PID: pid, Set: true, Params: params})
	return status, err
}

func (c *Controller) roundTrip(req Request) (any, rdm.ResponseStatus, error) {
	type completion struct {
		status  rdm.ResponseStatus
		payload any
	}
	done := make(chan completion, 1)

	err := c.transport.Send(req, func(status rdm.ResponseStatus, payload any) {
		done <- completion{status: status, payload: payload}
	})
	if err != nil {
		return nil, rdm.ResponseStatus{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	res := <-done
	return res.payload, res.status, nil
}

// writeOutcome maps a SET acknowledgement to an error. A broadcast
// outcome is fine for writes: the request went out, no reply was ever
// expected.
func writeOutcome(status rdm.ResponseStatus) error {
	if status.Succeeded() || status.Type == rdm.ResponseBroadcast {
		return nil
	}
	return statusFailure(status)
}

// statusFailure maps a non-success classification to the error surfaced
// to callers: transport failures get the backend-unavailable prefix,
// device failures surface verbatim.
func statusFailure(status rdm.ResponseStatus) error {
	switch status.Type {
	case rdm.ResponseTransportError:
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, status.Detail)
	case rdm.ResponseBroadcast:
		return ErrBroadcast
	default:
		return status.Err()
	}
}
