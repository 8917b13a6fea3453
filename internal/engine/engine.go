// Package engine holds the data-view engine: the query, sort configuration
// and reveal window of one listing session, and the Idle/Loading machine
// that grows the window when the viewport nears the end.
//
// Every event (mutator call, near-end signal, settle callback) mutates and
// recomputes under a single lock, so a Snapshot always matches the latest
// committed query, sort and window.
package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"collegeview/internal/domain"
	"collegeview/internal/view"
)

// Phase is the state of the reveal machine.
type Phase int

const (
	Idle Phase = iota
	Loading
)

func (p Phase) String() string {
	if p == Loading {
		return "loading"
	}
	return "idle"
}

// Snapshot is the externally observable state of the engine. Slices are
// copies owned by the caller.
type Snapshot struct {
	Visible []domain.Record
	Phase   Phase
	Query   string
	Sort    domain.SortConfig
	Window  int
	Matched int
	Total   int
}

// Loading reports whether an expansion is in flight.
func (s Snapshot) Loading() bool { return s.Phase == Loading }

// Exhausted reports whether every matching record is visible.
func (s Snapshot) Exhausted() bool { return len(s.Visible) >= s.Matched }

// Engine derives the visible listing from an immutable dataset.
type Engine struct {
	mu   sync.Mutex
	opts options
	log  *zap.Logger

	dataset []domain.Record
	query   string
	sortCfg domain.SortConfig
	window  int
	state   view.State

	phase Phase
	// generation counts query/sort changes; startGen is the generation an
	// in-flight expansion started under.
	generation uint64
	startGen   uint64
	// token identifies the current settle task; a callback carrying any
	// other token is stale.
	token uint64
	timer domain.Timer

	closed     bool
	sub        domain.Subscription
	subscribed bool

	nextListener uint64
	listeners    map[uint64]func(Snapshot)
	order        []uint64

	ignoredLog rate.Sometimes
}

// New loads the dataset once and builds the initial view: no query, no
// sort, window at its base. If a signal source is configured the engine
// subscribes to it until Close.
func New(provider domain.DatasetProvider, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var records []domain.Record
	if provider != nil {
		records = provider.LoadAll()
	}
	dataset := make([]domain.Record, len(records))
	copy(dataset, records)

	e := &Engine{
		opts:       o,
		log:        o.logger.Named("engine"),
		dataset:    dataset,
		window:     o.base,
		listeners:  make(map[uint64]func(Snapshot)),
		ignoredLog: rate.Sometimes{First: 1, Interval: time.Second},
	}
	e.recomputeLocked()

	if o.signal != nil {
		e.sub = o.signal.OnNearEnd(func() { e.NearEnd() })
		e.subscribed = true
	}

	e.log.Debug("engine started",
		zap.Int("records", len(dataset)),
		zap.Int("base", o.base),
		zap.Int("increment", o.increment),
		zap.Duration("settle", o.settle),
		zap.Stringer("stale_reveal", o.stale),
		zap.Bool("cancel_on_change", o.cancelOnChange),
	)
	return e
}

// SetQuery replaces the search text and resets the window.
func (e *Engine) SetQuery(q string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.query = q
	e.resetLocked("query")
	e.commit()
}

// SetSort replaces the sort configuration and resets the window.
func (e *Engine) SetSort(cfg domain.SortConfig) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.sortCfg = cfg
	e.resetLocked("sort")
	e.commit()
}

// ToggleSort selects field: the active field flips direction, another
// field starts ascending.
func (e *Engine) ToggleSort(field domain.SortField) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.sortCfg = e.sortCfg.Toggle(field)
	e.resetLocked("sort")
	e.commit()
}

// NearEnd is the reveal trigger. While Idle it starts an expansion that
// commits after the settling delay; while Loading it is ignored. It
// reports whether an expansion was started.
func (e *Engine) NearEnd() bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	if e.phase == Loading {
		e.opts.recorder.SignalIgnored()
		e.ignoredLog.Do(func() {
			e.log.Debug("near-end signal ignored while loading", zap.Int("window", e.window))
		})
		e.mu.Unlock()
		return false
	}

	e.phase = Loading
	e.startGen = e.generation
	e.token++
	tok := e.token
	e.timer = e.opts.scheduler.AfterFunc(e.opts.settle, func() { e.settle(tok) })
	e.log.Debug("reveal started", zap.Int("window", e.window), zap.Uint64("token", tok))
	e.commit()
	return true
}

func (e *Engine) settle(tok uint64) {
	e.mu.Lock()
	if e.closed || tok != e.token || e.phase != Loading {
		e.mu.Unlock()
		return
	}
	e.phase = Idle
	e.timer = nil

	if e.opts.stale == StaleRevealDiscard && e.startGen != e.generation {
		e.log.Debug("stale reveal discarded", zap.Int("window", e.window))
	} else {
		e.window += e.opts.increment
		e.opts.recorder.RevealCommitted(e.window)
		e.log.Debug("reveal committed", zap.Int("window", e.window))
	}
	e.recomputeLocked()
	e.commit()
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// OnChange registers fn to be called with a fresh snapshot after every
// committed event. Listeners run outside the engine lock, in registration
// order, on the goroutine that produced the event. The returned func
// removes the listener.
func (e *Engine) OnChange(fn func(Snapshot)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextListener++
	id := e.nextListener
	e.listeners[id] = fn
	e.order = append(e.order, id)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.listeners[id]; !ok {
			return
		}
		delete(e.listeners, id)
		for i, l := range e.order {
			if l == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Close tears the engine down: a pending settle is cancelled and turned
// into a no-op, the signal subscription is released and listeners are
// dropped. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.token++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.listeners = make(map[uint64]func(Snapshot))
	e.order = nil
	sub, subscribed := e.sub, e.subscribed
	e.subscribed = false
	e.mu.Unlock()

	if subscribed {
		e.opts.signal.OffNearEnd(sub)
	}
	e.log.Debug("engine closed")
}

// resetLocked handles a query or sort change.
func (e *Engine) resetLocked(kind string) {
	e.window = e.opts.base
	e.generation++
	if e.phase == Loading && e.opts.cancelOnChange {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.token++
		e.phase = Idle
		e.log.Debug("reveal cancelled by config change", zap.String("change", kind))
	}
	e.opts.recorder.ConfigChanged(kind)
	e.recomputeLocked()
	e.log.Debug("view reset",
		zap.String("change", kind),
		zap.String("query", e.query),
		zap.String("sort_field", string(e.sortCfg.Field)),
		zap.String("sort_direction", string(e.sortCfg.Direction)),
	)
}

func (e *Engine) recomputeLocked() {
	start := time.Now()
	e.state = view.Recompute(e.dataset, e.query, e.sortCfg, e.window)
	e.opts.recorder.Recomputed(time.Since(start), len(e.state.Visible), len(e.state.Sorted))
}

func (e *Engine) snapshotLocked() Snapshot {
	visible := make([]domain.Record, len(e.state.Visible))
	copy(visible, e.state.Visible)
	return Snapshot{
		Visible: visible,
		Phase:   e.phase,
		Query:   e.query,
		Sort:    e.sortCfg,
		Window:  e.window,
		Matched: len(e.state.Sorted),
		Total:   len(e.dataset),
	}
}

// commit takes a snapshot, releases the lock and notifies listeners.
// The caller must hold e.mu.
func (e *Engine) commit() {
	snap := e.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.listeners[id])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
