// Package schedule provides the deferred-callback runners the reveal
// engine uses for its settling delay: a wall-clock one and a manual one
// that tests advance in virtual time.
package schedule

import (
	"sync"
	"time"

	"collegeview/internal/domain"
)

// Real schedules callbacks on the wall clock via time.AfterFunc.
type Real struct{}

// AfterFunc runs fn on its own goroutine after d.
func (Real) AfterFunc(d time.Duration, fn func()) domain.Timer {
	return time.AfterFunc(d, fn)
}

// Manual is a virtual-time scheduler. Nothing runs until Advance is called;
// due tasks then run synchronously on the caller's goroutine, ordered by due
// time and, for equal due times, by scheduling order.
//
// Thread-safety: all methods are safe for concurrent use. Callbacks run
// without the internal lock held and may schedule further tasks.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	owner   *Manual
	due     time.Duration
	seq     uint64
	fn      func()
	done    bool
	stopped bool
}

// NewManual creates a manual scheduler at virtual time 0.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc registers fn to run once virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) domain.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTask{owner: m, due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Stop cancels the task. It reports false if the task already ran or was
// already stopped.
func (t *manualTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves virtual time forward by d, running every task that becomes
// due. It returns the number of tasks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	ran := 0
	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.compactLocked()
			m.mu.Unlock()
			return ran
		}
		m.now = next.due
		next.done = true
		m.mu.Unlock()

		next.fn()
		ran++
	}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of tasks that are scheduled and not stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done && !t.stopped {
			n++
		}
	}
	return n
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTask {
	var next *manualTask
	for _, t := range m.tasks {
		if t.done || t.stopped || t.due > target {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) compactLocked() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.done && !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.tasks); i++ {
		m.tasks[i] = nil
	}
	m.tasks = live
}
