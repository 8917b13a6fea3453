package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"collegeview/internal/domain"
	"collegeview/internal/schedule"
	"collegeview/internal/signal"
)

type staticProvider []domain.Record

func (p staticProvider) LoadAll() []domain.Record { return p }

func colleges(n int) staticProvider {
	out := make(staticProvider, n)
	for i := range out {
		out[i] = domain.Record{
			ID:      fmt.Sprintf("c%02d", i),
			College: domain.Profile{Name: fmt.Sprintf("College %02d", i)},
			Rating:  fmt.Sprintf("%d", i%7),
		}
	}
	return out
}

func ids(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func newTestEngine(t *testing.T, p domain.DatasetProvider, opts ...Option) (*Engine, *schedule.Manual) {
	t.Helper()
	sched := schedule.NewManual()
	opts = append([]Option{
		WithScheduler(sched),
		WithSettleDelay(time.Second),
		WithLogger(zaptest.NewLogger(t)),
	}, opts...)
	e := New(p, opts...)
	t.Cleanup(e.Close)
	return e, sched
}

func TestEngine_InitialWindow(t *testing.T) {
	data := colleges(25)
	e, _ := newTestEngine(t, data)

	snap := e.Snapshot()
	assert.Equal(t, ids(data[:10]), ids(snap.Visible))
	assert.Equal(t, Idle, snap.Phase)
	assert.False(t, snap.Loading())
	assert.Equal(t, 10, snap.Window)
	assert.Equal(t, 25, snap.Matched)
	assert.Equal(t, 25, snap.Total)
	assert.Equal(t, "", snap.Query)
	assert.Equal(t, domain.SortConfig{}, snap.Sort)
}

func TestEngine_RevealMonotonic(t *testing.T) {
	data := colleges(25)
	e, sched := newTestEngine(t, data)

	for n := 1; n <= 4; n++ {
		require.True(t, e.NearEnd())
		assert.True(t, e.Snapshot().Loading())
		sched.Advance(time.Second)

		snap := e.Snapshot()
		assert.False(t, snap.Loading())
		assert.Equal(t, 10+10*n, snap.Window)
		assert.Len(t, snap.Visible, min(10+10*n, 25))
		assert.Equal(t, ids(data[:len(snap.Visible)]), ids(snap.Visible))
	}
	assert.True(t, e.Snapshot().Exhausted())
}

func TestEngine_SettleWaitsForDelay(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25))

	e.NearEnd()
	sched.Advance(999 * time.Millisecond)
	assert.True(t, e.Snapshot().Loading())
	assert.Equal(t, 10, e.Snapshot().Window)

	sched.Advance(time.Millisecond)
	assert.Equal(t, 20, e.Snapshot().Window)
}

func TestEngine_SignalIgnoredWhileLoading(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25))

	assert.True(t, e.NearEnd())
	assert.False(t, e.NearEnd())
	assert.False(t, e.NearEnd())
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(time.Second)
	snap := e.Snapshot()
	assert.Equal(t, 20, snap.Window)
	assert.Len(t, snap.Visible, 20)
	assert.Equal(t, 0, sched.Pending())
}

func TestEngine_ConfigChangeResetsWindow(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25))

	grow := func() {
		for i := 0; i < 2; i++ {
			e.NearEnd()
			sched.Advance(time.Second)
		}
		require.Equal(t, 30, e.Snapshot().Window)
	}

	grow()
	e.SetQuery("college")
	assert.Equal(t, 10, e.Snapshot().Window)
	assert.Len(t, e.Snapshot().Visible, 10)

	grow()
	e.SetQuery("college")
	assert.Equal(t, 10, e.Snapshot().Window, "same query still resets")

	grow()
	e.ToggleSort(domain.SortRating)
	assert.Equal(t, 10, e.Snapshot().Window)

	grow()
	e.SetSort(domain.SortConfig{})
	assert.Equal(t, 10, e.Snapshot().Window)
}

func TestEngine_QueryMatchingThree(t *testing.T) {
	data := colleges(25)
	data[3].College.Name = "Loyola College"
	data[9].College.Name = "Loyola Academy"
	data[17].College.Name = "LOYOLA Institute"
	e, _ := newTestEngine(t, data)

	e.SetQuery("loyola")
	snap := e.Snapshot()
	assert.Equal(t, []string{"c03", "c09", "c17"}, ids(snap.Visible))
	assert.Equal(t, 3, snap.Matched)
	assert.Equal(t, 10, snap.Window)
	assert.True(t, snap.Exhausted())
}

func TestEngine_SortRatingDescending(t *testing.T) {
	data := colleges(25)
	ratings := []string{"3", "1", "", "5", "2"}
	for i := range data {
		data[i].Rating = "1"
	}
	for i, r := range ratings {
		data[i].Rating = r
	}
	e, sched := newTestEngine(t, data)

	e.ToggleSort(domain.SortRating)
	e.ToggleSort(domain.SortRating)
	snap := e.Snapshot()
	require.Equal(t, domain.SortConfig{Field: domain.SortRating, Direction: domain.Descending}, snap.Sort)
	assert.Equal(t, "c03", snap.Visible[0].ID)
	assert.Equal(t, "c00", snap.Visible[1].ID)

	e.NearEnd()
	sched.Advance(time.Second)
	e.NearEnd()
	sched.Advance(time.Second)
	snap = e.Snapshot()
	require.Len(t, snap.Visible, 25)
	assert.Equal(t, "c02", snap.Visible[24].ID, "empty rating sorts as 0 at the low end")
}

func TestEngine_ToggleSort(t *testing.T) {
	e, _ := newTestEngine(t, colleges(5))

	e.ToggleSort(domain.SortFees)
	assert.Equal(t, domain.SortConfig{Field: domain.SortFees, Direction: domain.Ascending}, e.Snapshot().Sort)
	e.ToggleSort(domain.SortFees)
	assert.Equal(t, domain.SortConfig{Field: domain.SortFees, Direction: domain.Descending}, e.Snapshot().Sort)
	e.ToggleSort(domain.SortFees)
	assert.Equal(t, domain.SortConfig{Field: domain.SortFees, Direction: domain.Ascending}, e.Snapshot().Sort)
	e.ToggleSort(domain.SortReviewsScore)
	assert.Equal(t, domain.SortConfig{Field: domain.SortReviewsScore, Direction: domain.Ascending}, e.Snapshot().Sort)
}

func TestEngine_UnknownSortKeepsFilterOrder(t *testing.T) {
	data := colleges(25)
	e, _ := newTestEngine(t, data)

	e.SetSort(domain.SortConfig{Field: "unknownField", Direction: domain.Descending})
	assert.Equal(t, ids(data[:10]), ids(e.Snapshot().Visible))
}

func TestEngine_StaleRevealApplies(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25))

	e.NearEnd()
	e.SetQuery("college 1")
	snap := e.Snapshot()
	assert.True(t, snap.Loading(), "config change does not cancel an in-flight reveal")
	assert.Equal(t, 10, snap.Window)

	sched.Advance(time.Second)
	snap = e.Snapshot()
	assert.False(t, snap.Loading())
	assert.Equal(t, 20, snap.Window)
	assert.Len(t, snap.Visible, 10, "clamped to the ten matches of the new query")
}

func TestEngine_StaleRevealDiscarded(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25), WithStaleReveal(StaleRevealDiscard))

	e.NearEnd()
	e.SetQuery("college")
	sched.Advance(time.Second)

	snap := e.Snapshot()
	assert.False(t, snap.Loading())
	assert.Equal(t, 10, snap.Window)

	e.NearEnd()
	sched.Advance(time.Second)
	assert.Equal(t, 20, e.Snapshot().Window, "reveals started after the change still apply")
}

func TestEngine_CancelOnChange(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25), WithCancelOnChange(true))

	e.NearEnd()
	e.SetSort(domain.SortConfig{Field: domain.SortRating, Direction: domain.Ascending})
	snap := e.Snapshot()
	assert.False(t, snap.Loading())
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(time.Minute)
	assert.Equal(t, 10, e.Snapshot().Window)

	assert.True(t, e.NearEnd(), "machine is Idle again")
	sched.Advance(time.Second)
	assert.Equal(t, 20, e.Snapshot().Window)
}

func TestEngine_CustomWindow(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25), WithWindow(4, 3))
	assert.Len(t, e.Snapshot().Visible, 4)

	e.NearEnd()
	sched.Advance(time.Second)
	assert.Len(t, e.Snapshot().Visible, 7)

	e.SetQuery("")
	assert.Len(t, e.Snapshot().Visible, 4)
}

// leakyScheduler ignores Stop, so the callback still runs after teardown.
type leakyScheduler struct {
	fns []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (l *leakyScheduler) AfterFunc(_ time.Duration, fn func()) domain.Timer {
	l.fns = append(l.fns, fn)
	return leakyTimer{}
}

func TestEngine_SettleAfterCloseIsNoop(t *testing.T) {
	sched := &leakyScheduler{}
	e := New(colleges(25), WithScheduler(sched))

	var calls int
	e.OnChange(func(Snapshot) { calls++ })

	require.True(t, e.NearEnd())
	calls = 0
	e.Close()
	require.Len(t, sched.fns, 1)
	sched.fns[0]()

	snap := e.Snapshot()
	assert.Equal(t, 10, snap.Window)
	assert.Equal(t, 0, calls)
	assert.False(t, e.NearEnd())
	e.SetQuery("x")
	assert.Equal(t, "", e.Snapshot().Query, "closed engine ignores mutators")
}

func TestEngine_CloseStopsPendingSettle(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25))
	e.NearEnd()
	e.Close()
	e.Close()

	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, sched.Advance(time.Minute))
}

func TestEngine_SignalSubscriptionLifecycle(t *testing.T) {
	sig := signal.New(0)
	sched := schedule.NewManual()

	first := New(colleges(25), WithScheduler(sched), WithSignal(sig))
	assert.Equal(t, 1, sig.Len())
	first.Close()
	assert.Equal(t, 0, sig.Len())

	second := New(colleges(25), WithScheduler(sched), WithSignal(sig))
	defer second.Close()
	assert.Equal(t, 1, sig.Len(), "handlers do not accumulate across engines")

	sig.Notify()
	sig.Notify()
	assert.True(t, second.Snapshot().Loading())
	sched.Advance(time.Second)
	assert.Equal(t, 20, second.Snapshot().Window)
	assert.Equal(t, 10, first.Snapshot().Window)
}

func TestEngine_OnChange(t *testing.T) {
	e, sched := newTestEngine(t, colleges(25))

	var got []Snapshot
	cancel := e.OnChange(func(s Snapshot) { got = append(got, s) })

	e.SetQuery("college")
	e.NearEnd()
	e.NearEnd()
	sched.Advance(time.Second)

	require.Len(t, got, 3, "ignored signals do not notify")
	assert.Equal(t, "college", got[0].Query)
	assert.True(t, got[1].Loading())
	assert.Equal(t, 20, got[2].Window)

	cancel()
	cancel()
	e.SetQuery("")
	assert.Len(t, got, 3)
}

func TestEngine_SnapshotIsACopy(t *testing.T) {
	data := colleges(25)
	e, _ := newTestEngine(t, data)

	snap := e.Snapshot()
	snap.Visible[0].ID = "mutated"
	assert.Equal(t, "c00", e.Snapshot().Visible[0].ID)

	data[1].ID = "mutated"
	assert.Equal(t, "c01", e.Snapshot().Visible[1].ID, "engine keeps its own copy of the dataset")
}

func TestEngine_EmptyDataset(t *testing.T) {
	e, sched := newTestEngine(t, nil)

	snap := e.Snapshot()
	assert.NotNil(t, snap.Visible)
	assert.Empty(t, snap.Visible)
	assert.Equal(t, 0, snap.Total)

	e.SetQuery("anything")
	e.ToggleSort(domain.SortFees)
	assert.True(t, e.NearEnd())
	sched.Advance(time.Second)
	assert.Empty(t, e.Snapshot().Visible)
}

type countingRecorder struct {
	mu        sync.Mutex
	reveals   int
	ignored   int
	changes   map[string]int
	recompute int
}

func (r *countingRecorder) RevealCommitted(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reveals++
}

func (r *countingRecorder) SignalIgnored() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignored++
}

func (r *countingRecorder) ConfigChanged(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[kind]++
}

func (r *countingRecorder) Recomputed(time.Duration, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recompute++
}

func TestEngine_Recorder(t *testing.T) {
	rec := &countingRecorder{changes: map[string]int{}}
	e, sched := newTestEngine(t, colleges(25), WithRecorder(rec))

	e.SetQuery("c")
	e.ToggleSort(domain.SortFees)
	e.NearEnd()
	e.NearEnd()
	sched.Advance(time.Second)

	assert.Equal(t, 1, rec.reveals)
	assert.Equal(t, 1, rec.ignored)
	assert.Equal(t, map[string]int{"query": 1, "sort": 1}, rec.changes)
	assert.Equal(t, 4, rec.recompute, "initial build, two resets and one reveal")
}

func TestEngine_RealSchedulerConcurrentUse(t *testing.T) {
	e := New(colleges(25), WithSettleDelay(time.Millisecond))
	defer e.Close()

	settled := make(chan Snapshot, 64)
	e.OnChange(func(s Snapshot) {
		if !s.Loading() && s.Window > 10 {
			select {
			case settled <- s:
			default:
			}
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				e.NearEnd()
				if j%5 == 0 {
					e.SetQuery(fmt.Sprintf("college %d", i%3))
				}
				snap := e.Snapshot()
				assert.LessOrEqual(t, len(snap.Visible), snap.Matched)
			}
		}(i)
	}
	wg.Wait()

	e.SetQuery("")
	e.NearEnd()
	select {
	case s := <-settled:
		assert.Greater(t, s.Window, 10)
	case <-time.After(2 * time.Second):
		t.Fatal("reveal never settled on the real scheduler")
	}
}
