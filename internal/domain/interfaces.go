package domain

import "time"

// DatasetProvider supplies the records the listing is built from.
// LoadAll is called once; the returned slice is treated as immutable.
type DatasetProvider interface {
	LoadAll() []Record
}

// Subscription identifies a registered near-end callback.
type Subscription uint64

// ViewportSignal notifies subscribers when the consumer's view nears the
// end of the rendered content.
type ViewportSignal interface {
	OnNearEnd(fn func()) Subscription
	OffNearEnd(sub Subscription)
}

// Timer is the cancel handle of a scheduled task.
type Timer interface {
	// Stop prevents the task from running. It reports whether the call
	// stopped the task before it ran.
	Stop() bool
}

// Scheduler runs deferred callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}
