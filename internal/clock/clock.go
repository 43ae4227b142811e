// Package clock provides a time abstraction so timer-driven state
// transitions can be tested deterministically. Production code uses
// New(); tests use NewMock() and advance time by hand.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock provides the time operations the store and simulators need.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration

	// AfterFunc schedules fn to run after d and returns a handle that
	// can cancel it.
	AfterFunc(d time.Duration, fn func()) Timer

	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Timer is a cancellable scheduled function.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped the
	// timer before it fired.
	Stop() bool
}

// Ticker wraps time.Ticker for mockability.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// realClock implements Clock using the standard time package.
type realClock struct{}

// New returns a Clock backed by real system time.
func New() Clock {
	return &realClock{}
}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func (c *realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return &realTimer{timer: time.AfterFunc(d, fn)}
}

func (c *realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) Stop() bool {
	return t.timer.Stop()
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}

// Mock implements Clock with controllable time. Advance moves the
// clock forward and fires any scheduled functions that come due, in
// deadline order, on the calling goroutine.
type Mock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*mockTimer
}

// NewMock creates a Mock set to the given time.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Since returns the duration since t.
func (m *Mock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// AfterFunc schedules fn to run when the mock is advanced past d.
func (m *Mock) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{
		mock:     m,
		deadline: m.current.Add(d),
		fn:       fn,
	}
	m.timers = append(m.timers, t)
	return t
}

// NewTicker returns a non-firing ticker; tests drive periodic work by
// calling the tick entrypoint directly.
func (m *Mock) NewTicker(d time.Duration) Ticker {
	return &mockTicker{ch: make(chan time.Time)}
}

// Set moves the mock clock to a specific time without firing timers.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the clock forward by d, firing due timers in order.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.current.Add(d)

	for {
		var due []*mockTimer
		var rest []*mockTimer
		for _, t := range m.timers {
			if !t.stopped && !t.deadline.After(target) {
				due = append(due, t)
			} else {
				rest = append(rest, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
		m.timers = rest

		// Fire without holding the lock so callbacks may reschedule.
		for _, t := range due {
			m.current = t.deadline
			m.mu.Unlock()
			t.fn()
			m.mu.Lock()
		}
	}

	m.current = target
	m.mu.Unlock()
}

type mockTimer struct {
	mock     *Mock
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type mockTicker struct {
	ch chan time.Time
}

func (t *mockTicker) C() <-chan time.Time {
	return t.ch
}

func (t *mockTicker) Stop() {}
