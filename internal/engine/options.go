package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"collegeview/internal/domain"
	"collegeview/internal/schedule"
)

// Defaults for the reveal window and settling delay.
const (
	DefaultBase        = 10
	DefaultIncrement   = 10
	DefaultSettleDelay = time.Second
)

// StaleReveal decides what happens to an expansion that was started before
// the query or sort changed and settles afterwards.
type StaleReveal int

const (
	// StaleRevealApply grows the window of the new result set.
	StaleRevealApply StaleReveal = iota
	// StaleRevealDiscard settles back to Idle without growing the window.
	StaleRevealDiscard
)

func (s StaleReveal) String() string {
	switch s {
	case StaleRevealApply:
		return "apply"
	case StaleRevealDiscard:
		return "discard"
	}
	return fmt.Sprintf("StaleReveal(%d)", int(s))
}

// ParseStaleReveal maps a config value to a StaleReveal. Empty means apply.
func ParseStaleReveal(s string) (StaleReveal, error) {
	switch s {
	case "", "apply":
		return StaleRevealApply, nil
	case "discard":
		return StaleRevealDiscard, nil
	}
	return 0, fmt.Errorf("unknown stale reveal policy %q", s)
}

// Recorder receives engine events for instrumentation.
type Recorder interface {
	RevealCommitted(window int)
	SignalIgnored()
	ConfigChanged(kind string)
	Recomputed(d time.Duration, visible, matched int)
}

type nopRecorder struct{}

func (nopRecorder) RevealCommitted(int)                {}
func (nopRecorder) SignalIgnored()                     {}
func (nopRecorder) ConfigChanged(string)               {}
func (nopRecorder) Recomputed(time.Duration, int, int) {}

type options struct {
	base           int
	increment      int
	settle         time.Duration
	stale          StaleReveal
	cancelOnChange bool
	scheduler      domain.Scheduler
	signal         domain.ViewportSignal
	logger         *zap.Logger
	recorder       Recorder
}

func defaultOptions() options {
	return options{
		base:      DefaultBase,
		increment: DefaultIncrement,
		settle:    DefaultSettleDelay,
		stale:     StaleRevealApply,
		scheduler: schedule.Real{},
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
	}
}

// Option configures an Engine.
type Option func(*options)

// WithWindow sets the initial window size and the growth per reveal.
// Non-positive values keep the defaults.
func WithWindow(base, increment int) Option {
	return func(o *options) {
		if base > 0 {
			o.base = base
		}
		if increment > 0 {
			o.increment = increment
		}
	}
}

// WithSettleDelay sets the delay between a near-end signal and the window
// growing. Negative values are treated as zero.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.settle = d
	}
}

// WithStaleReveal selects how an expansion that outlives a config change
// is handled.
func WithStaleReveal(s StaleReveal) Option {
	return func(o *options) { o.stale = s }
}

// WithCancelOnChange makes a query or sort change stop an in-flight
// expansion and return to Idle immediately.
func WithCancelOnChange(cancel bool) Option {
	return func(o *options) { o.cancelOnChange = cancel }
}

// WithScheduler sets the scheduler for the settling delay.
func WithScheduler(s domain.Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithSignal subscribes the engine to a near-end signal source for its
// lifetime.
func WithSignal(s domain.ViewportSignal) Option {
	return func(o *options) { o.signal = s }
}

// WithLogger sets the logger. nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the instrumentation sink.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}
