// Package interfaces provides internal interface definitions shared
// across kernel subsystems, kept separate from the packages that
// implement or consume them to avoid circular imports.
package interfaces

// Source is a hardware interrupt source: something that raises an
// interrupt number, carrying a payload the waiting task should
// receive, and that must be acknowledged once observed. The real
// backend multiplexes several of these (tick timer, free-running
// timer, UART) through one io_uring instance; the stub backend
// multiplexes the same shape over channels and a time.Ticker.
type Source interface {
	// Wait blocks until the next interrupt, returning its event id and
	// payload, or false if the source was closed.
	Wait() (eventID int, payload int32, ok bool)
	Close() error
}

// Logger is the minimal logging surface kernel subsystems accept,
// matching internal/logging's printf-style methods without importing
// the concrete type — any injected logger just needs these two.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// Observer receives idle-time accounting samples from the scheduler's
// main loop (spec §3: "idle-time percentage is a rolling value derived
// from the ratio of time spent in idle to total time").
type Observer interface {
	ObserveIdle(durationNs uint64)
	ObserveBusy(durationNs uint64)
}
