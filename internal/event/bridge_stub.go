package event

import (
	"sync"
	"time"
)

// StubSource is the portable interrupt source: a time.Ticker stands in
// for the 10ms tick timer, and Inject lets a driver (simulation harness
// or test) raise the free-running, UART, or aux events on demand. Built
// under every build tag, so a -tags giouring build can fall back to it;
// the real backend requires -tags giouring.
type StubSource struct {
	tick   *time.Ticker
	events chan rawEvent
	done   chan struct{}
	once   sync.Once
}

type rawEvent struct {
	id      int
	payload int32
}

// NewStubSource starts the background goroutine that turns tickPeriod
// into TickEventID events. A zero tickPeriod disables the ticker
// entirely (useful for tests that only want to Inject events by hand).
func NewStubSource(tickPeriod time.Duration) *StubSource {
	s := &StubSource{
		events: make(chan rawEvent, 16),
		done:   make(chan struct{}),
	}
	if tickPeriod <= 0 {
		return s
	}
	s.tick = time.NewTicker(tickPeriod)
	go s.run()
	return s
}

// Tick events always carry a fixed zero payload (spec: "for timer
// events a fixed 0"); only UART events carry a live interrupt-status
// word.
func (s *StubSource) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.tick.C:
			s.push(TickEventID, 0)
		}
	}
}

// Inject raises eventID with payload as if the hardware had. Safe to
// call from a test goroutine or a simulated UART/aux driver.
func (s *StubSource) Inject(eventID int, payload int32) {
	s.push(eventID, payload)
}

func (s *StubSource) push(eventID int, payload int32) {
	select {
	case s.events <- rawEvent{id: eventID, payload: payload}:
	case <-s.done:
	}
}

// Wait blocks until the next raised event, or returns ok=false once
// Close has been called and no more events are buffered.
func (s *StubSource) Wait() (int, int32, bool) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return 0, 0, false
		}
		return ev.id, ev.payload, true
	case <-s.done:
		return 0, 0, false
	}
}

func (s *StubSource) Close() error {
	s.once.Do(func() {
		if s.tick != nil {
			s.tick.Stop()
		}
		close(s.done)
	})
	return nil
}
