package deck

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Task is a scheduled callback that can be cancelled before it fires.
type Task interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the task; false means it already fired or was stopped.
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// ClockScheduler schedules callbacks on a clock.Clock. The zero value
// uses the wall clock; tests can plug in a clock.Mock.
type ClockScheduler struct {
	Clock clock.Clock
}

// NewClockScheduler creates a scheduler on the wall clock.
func NewClockScheduler() ClockScheduler {
	return ClockScheduler{Clock: clock.New()}
}

// AfterFunc implements Scheduler.
func (c ClockScheduler) AfterFunc(d time.Duration, f func()) Task {
	clk := c.Clock
	if clk == nil {
		clk = clock.New()
	}
	return clk.AfterFunc(d, f)
}

// ManualScheduler is a Scheduler whose clock only moves when Advance is
// called. Unlike clock.Mock it runs due callbacks synchronously, in
// deadline order, before Advance returns. Used by tests and by
// deterministic replays.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a manual scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{s: m, at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every task that came due,
// in deadline order. Callbacks run on the caller's goroutine without the
// scheduler lock held, so they may schedule further tasks.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	remaining := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.stopped:
		case t.at <= m.now:
			t.fired = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	m.tasks = remaining
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of tasks that have neither fired nor been stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Stop implements Task.
func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
