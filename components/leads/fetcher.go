package leads

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultFetchDelay is the simulated network latency.
	DefaultFetchDelay = 1500 * time.Millisecond
	// DefaultFetchErrorMessage is reported when an armed fetch fails.
	DefaultFetchErrorMessage = "Failed to fetch leads from the server. The API returned a 500 Internal Server Error. Please try again or contact support."
	// FetchErrorTitle heads the error alert.
	FetchErrorTitle = "Data Fetch Error"
)

// Timer is the handle returned by AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Implementations must not call f
// synchronously.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FetchOptions configures a FetchSimulator.
type FetchOptions struct {
	Delay        time.Duration
	ErrorMessage string
	AfterFunc    AfterFunc
	// OnChange observes every state transition. It runs outside the lock.
	OnChange func(ctx context.Context, state FetchState)
	Now      func() time.Time
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.ErrorMessage == "" {
		o.ErrorMessage = DefaultFetchErrorMessage
	}
	if o.AfterFunc == nil {
		o.AfterFunc = systemAfterFunc
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// FetchSimulator loads the record source after a delay. Only the most
// recent Load may apply its result.
type FetchSimulator struct {
	source RecordSource
	opts   FetchOptions

	mu         sync.Mutex
	state      FetchState
	last       []Lead
	armed      bool
	generation uint64
	timer      Timer
	changed    chan struct{}
}

// NewFetchSimulator builds an idle simulator. Zero delay in opts falls back
// to DefaultFetchDelay; use a negative delay for immediate resolution.
func NewFetchSimulator(source RecordSource, opts FetchOptions) *FetchSimulator {
	if opts.Delay == 0 {
		opts.Delay = DefaultFetchDelay
	}
	return &FetchSimulator{
		source:  source,
		opts:    opts.withDefaults(),
		state:   FetchState{Status: FetchIdle},
		changed: make(chan struct{}),
	}
}

type armMode int

const (
	keepArmed armMode = iota
	armError
	disarmError
)

// pendingLoad is a started fetch whose timer has not been scheduled yet.
type pendingLoad struct {
	gen   uint64
	state FetchState
}

// Load starts a fetch, superseding any fetch in flight, and returns its
// generation.
func (f *FetchSimulator) Load(ctx context.Context) uint64 {
	return f.run(ctx, f.begin(keepArmed))
}

// Refetch disarms any pending error and starts a new fetch.
func (f *FetchSimulator) Refetch(ctx context.Context) uint64 {
	return f.run(ctx, f.begin(disarmError))
}

// ArmAndLoad arms a one-shot error and starts the fetch that will report
// it. A superseded callback can never observe the armed flag in between.
func (f *FetchSimulator) ArmAndLoad(ctx context.Context) uint64 {
	return f.run(ctx, f.begin(armError))
}

// ArmError makes the next fetch to complete fail exactly once.
func (f *FetchSimulator) ArmError() {
	f.mu.Lock()
	f.armed = true
	f.mu.Unlock()
}

// Stop cancels any fetch in flight. A stopped simulator can be loaded again.
func (f *FetchSimulator) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.generation++
}

// begin moves the simulator to Loading under the lock. The caller must
// pass the result to run.
func (f *FetchSimulator) begin(mode armMode) pendingLoad {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	switch mode {
	case armError:
		f.armed = true
	case disarmError:
		f.armed = false
	}
	f.generation++
	f.state = FetchState{
		Status:     FetchLoading,
		Records:    f.last,
		Generation: f.generation,
		UpdatedAt:  f.opts.Now(),
	}
	f.broadcastLocked()
	return pendingLoad{gen: f.generation, state: f.snapshotLocked()}
}

// run publishes the Loading state and schedules resolution. It must be
// called without holding any lock the OnChange observer may take.
func (f *FetchSimulator) run(ctx context.Context, p pendingLoad) uint64 {
	ctx = context.WithoutCancel(ctx)
	f.mu.Lock()
	superseded := f.generation != p.gen
	f.mu.Unlock()
	if superseded {
		return p.gen
	}
	f.publish(ctx, p.state)

	timer := f.opts.AfterFunc(f.opts.Delay, func() { f.resolve(ctx, p.gen) })
	f.mu.Lock()
	if f.generation == p.gen && f.state.Status == FetchLoading {
		f.timer = timer
	} else {
		timer.Stop()
	}
	f.mu.Unlock()
	return p.gen
}

// State returns a snapshot of the current state.
func (f *FetchSimulator) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Wait blocks until generation gen resolves or is superseded.
func (f *FetchSimulator) Wait(ctx context.Context, gen uint64) (FetchState, error) {
	for {
		f.mu.Lock()
		state := f.snapshotLocked()
		changed := f.changed
		done := f.generation != gen || state.Status != FetchLoading
		f.mu.Unlock()
		if done {
			return state, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

func (f *FetchSimulator) resolve(ctx context.Context, gen uint64) {
	records, err := f.source.Records(ctx)

	f.mu.Lock()
	if gen != f.generation || f.state.Status != FetchLoading {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	now := f.opts.Now()
	switch {
	case f.armed:
		f.armed = false
		f.state = FetchState{Status: FetchFailed, ErrorMessage: f.opts.ErrorMessage, Records: f.last, Generation: gen, UpdatedAt: now}
	case err != nil:
		f.state = FetchState{Status: FetchFailed, ErrorMessage: err.Error(), Records: f.last, Generation: gen, UpdatedAt: now}
	default:
		f.last = append([]Lead(nil), records...)
		f.state = FetchState{Status: FetchLoaded, Records: f.last, Generation: gen, UpdatedAt: now}
	}
	snapshot := f.snapshotLocked()
	f.broadcastLocked()
	f.mu.Unlock()

	f.publish(ctx, snapshot)
}

func (f *FetchSimulator) snapshotLocked() FetchState {
	state := f.state
	state.Records = append([]Lead(nil), f.state.Records...)
	return state
}

func (f *FetchSimulator) broadcastLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}

func (f *FetchSimulator) publish(ctx context.Context, state FetchState) {
	if f.opts.OnChange != nil {
		f.opts.OnChange(ctx, state)
	}
}
