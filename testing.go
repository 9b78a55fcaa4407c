package microkernel

import (
	"sync"

	"github.com/ts7200/microkernel/internal/interfaces"
)

// MockInterruptSource is a test double for interfaces.Source: events
// are queued by hand with Inject instead of arriving from a ticker or
// io_uring, letting a test drive AwaitEvent/Deliver deterministically.
// Mirrors the teacher's MockBackend: track calls, make behavior
// explicit, no hidden timing.
type MockInterruptSource struct {
	mu     sync.Mutex
	events []mockEvent
	cond   *sync.Cond
	closed bool

	waitCalls  int
	closeCalls int
}

type mockEvent struct {
	id      int
	payload int32
}

// NewMockInterruptSource creates an empty mock source.
func NewMockInterruptSource() *MockInterruptSource {
	m := &MockInterruptSource{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Inject queues an event for a future Wait to return.
func (m *MockInterruptSource) Inject(eventID int, payload int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, mockEvent{id: eventID, payload: payload})
	m.cond.Signal()
}

// Wait implements interfaces.Source, blocking until Inject or Close.
func (m *MockInterruptSource) Wait() (int, int32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitCalls++
	for len(m.events) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.events) == 0 {
		return 0, 0, false
	}
	ev := m.events[0]
	m.events = m.events[1:]
	return ev.id, ev.payload, true
}

// Close implements interfaces.Source, unblocking any pending Wait.
func (m *MockInterruptSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	m.closed = true
	m.cond.Broadcast()
	return nil
}

// WaitCalls returns the number of times Wait has been called.
func (m *MockInterruptSource) WaitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitCalls
}

// IsClosed reports whether Close has been called.
func (m *MockInterruptSource) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ interfaces.Source = (*MockInterruptSource)(nil)

// MockClock is a manually-advanced clock, standing in for the real
// down-counter timer the FreeRunning event derives idle-time ticks
// from. A component that wants wall-clock-independent timing takes a
// func() int64 (Now) rather than calling time.Now directly; tests
// construct one of these and advance it explicitly.
type MockClock struct {
	mu  sync.Mutex
	now int64
}

// NewMockClock creates a clock starting at startNs.
func NewMockClock(startNs int64) *MockClock {
	return &MockClock{now: startNs}
}

// Now returns the current mock time in nanoseconds.
func (c *MockClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the mock clock forward by deltaNs.
func (c *MockClock) Advance(deltaNs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += deltaNs
}
