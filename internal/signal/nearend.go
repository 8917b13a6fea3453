// Package signal carries the "near end of view" notification from the
// presentation layer to whoever subscribed to it.
package signal

import (
	"sync"

	"collegeview/internal/domain"
)

// NearEnd is a broadcaster for near-end notifications. Each engine
// registers once on construction and deregisters on teardown, so handlers
// never accumulate across engine instances.
type NearEnd struct {
	mu        sync.Mutex
	threshold int
	next      domain.Subscription
	order     []domain.Subscription
	handlers  map[domain.Subscription]func()
}

// New creates a broadcaster whose Observe fires when the position is within
// threshold rows of the last rendered row.
func New(threshold int) *NearEnd {
	if threshold < 0 {
		threshold = 0
	}
	return &NearEnd{threshold: threshold, handlers: make(map[domain.Subscription]func())}
}

// OnNearEnd registers fn and returns its subscription.
func (n *NearEnd) OnNearEnd(fn func()) domain.Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.handlers[n.next] = fn
	n.order = append(n.order, n.next)
	return n.next
}

// OffNearEnd removes a subscription. Unknown subscriptions are ignored.
func (n *NearEnd) OffNearEnd(sub domain.Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.handlers[sub]; !ok {
		return
	}
	delete(n.handlers, sub)
	for i, s := range n.order {
		if s == sub {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Notify calls every current subscriber in registration order and returns
// how many were called. Handlers run without the lock held.
func (n *NearEnd) Notify() int {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.order))
	for _, s := range n.order {
		fns = append(fns, n.handlers[s])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Observe evaluates the near-end predicate for a cursor at pos over
// rendered rows and notifies subscribers when it holds.
func (n *NearEnd) Observe(pos, rendered int) bool {
	if !IsNearEnd(pos, rendered, n.threshold) {
		return false
	}
	n.Notify()
	return true
}

// Len returns the number of registered subscribers.
func (n *NearEnd) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.order)
}

// IsNearEnd reports whether pos is within threshold rows of the last of
// rendered rows. An empty rendering is always at its end.
func IsNearEnd(pos, rendered, threshold int) bool {
	return pos+threshold >= rendered-1
}
