package microkernel

import (
	"sync/atomic"
	"time"
)

// idleAccountant tracks the rolling idle-time percentage spec §3
// describes ("derived from the ratio of time spent in idle to total
// time") and answers the Perf syscall's "time since the last Perf
// call" question. Grounded on the teacher's atomic.Uint64 counter
// style in metrics.go, adapted from I/O byte/op counters to
// idle/busy nanosecond counters.
type idleAccountant struct {
	idleNs atomic.Uint64
	busyNs atomic.Uint64

	lastCallNs atomic.Int64 // UnixNano of the last Perf call observed
}

func newIdleAccountant() *idleAccountant {
	a := &idleAccountant{}
	a.lastCallNs.Store(time.Now().UnixNano())
	return a
}

func (a *idleAccountant) ObserveIdle(durationNs uint64) { a.observeIdle(durationNs) }
func (a *idleAccountant) ObserveBusy(durationNs uint64) { a.observeBusy(durationNs) }

func (a *idleAccountant) observeIdle(durationNs uint64) { a.idleNs.Add(durationNs) }
func (a *idleAccountant) observeBusy(durationNs uint64) { a.busyNs.Add(durationNs) }

func (a *idleAccountant) idlePercent() float64 {
	idle := a.idleNs.Load()
	total := idle + a.busyNs.Load()
	if total == 0 {
		return 0
	}
	return float64(idle) / float64(total) * 100
}

// sinceLast returns the wall-clock time since the previous call to
// sinceLast, then resets the marker — each Perf syscall moves it
// forward. There is one marker for the whole kernel, so the delta is
// measured from the last Perf call by any task, not by the caller.
func (a *idleAccountant) sinceLast() time.Duration {
	now := time.Now().UnixNano()
	prev := a.lastCallNs.Swap(now)
	return time.Duration(now - prev)
}
