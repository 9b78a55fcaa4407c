// Package event implements the AwaitEvent facility: the event map
// bridging hardware interrupts to blocked tasks, and the interrupt
// bridge that feeds it (real and stub backends in bridge_linux.go /
// bridge_stub.go).
package event

import (
	"github.com/ts7200/microkernel/internal/containers"
	"github.com/ts7200/microkernel/internal/sched"
	"github.com/ts7200/microkernel/internal/task"
)

// Reserved event ids, matching the interrupt controller's vector
// numbering for the timers this kernel's tick accounting depends on
// (§6.2: "the exact numeric ids match the interrupt controller's
// vector numbering on the host platform").
const (
	TickEventID        = 4  // 10ms periodic tick (timer 2 in the source board)
	FreeRunningEventID = 5  // free-running down-counter, idle-time accounting
	UARTEventID        = 51 // UART rx/tx/modem status
	AuxEventID         = 54 // reserved, present in the source allow-list
)

// DefaultAllowList is the fixed set of event ids AwaitEvent accepts.
var DefaultAllowList = []int{TickEventID, FreeRunningEventID, UARTEventID, AuxEventID}

// ErrBadEventID is the return code for AwaitEvent on an id outside the
// allow-list (spec §6.1).
const ErrBadEventID int32 = -1

// Bridge owns the event map: at most one task may wait per event id.
type Bridge struct {
	table   *task.Table
	sched   *sched.Scheduler
	waiting *containers.SparseArray[task.Tid]
	allowed map[int]bool
}

// New constructs a bridge whose event map is bounded by capacity (the
// sparse array's index range, e.g. 64 per spec §3) and which accepts
// only ids in allowList.
func New(table *task.Table, scheduler *sched.Scheduler, capacity int, allowList []int) *Bridge {
	allowed := make(map[int]bool, len(allowList))
	for _, id := range allowList {
		allowed[id] = true
	}
	return &Bridge{
		table:   table,
		sched:   scheduler,
		waiting: containers.NewSparseArray[task.Tid](capacity),
		allowed: allowed,
	}
}

// AwaitEvent implements the syscall's kernel-side half. It returns
// (ErrBadEventID, true) for an id outside the allow-list, which the
// caller gets immediately; otherwise it returns (0, false) and the
// caller blocks, its real payload delivered later by Deliver.
func (b *Bridge) AwaitEvent(tid task.Tid, eventID int) (int32, bool) {
	if !b.allowed[eventID] {
		return ErrBadEventID, true
	}
	if b.waiting.Has(eventID) {
		panic("event: two tasks registered for the same event id")
	}
	b.waiting.Put(eventID, tid)
	d := b.table.MustGet(tid)
	d.State = task.State{Tag: task.EventWait, EventID: eventID}
	return 0, false
}

// Deliver processes an observed interrupt: if a task is waiting for
// eventID, it wakes with payload and rejoins the ready queue. An event
// with no waiter is dropped, per spec §4.5 step 4.
func (b *Bridge) Deliver(eventID int, payload int32) {
	tid, ok := b.waiting.Take(eventID)
	if !ok {
		return
	}
	d := b.table.MustGet(tid)
	d.State = task.ReadyState()
	b.table.WriteReturn(tid, payload)
	b.sched.Push(tid, d.Priority)
}

// NumWaiting reports how many tasks are currently EVENT_WAIT — used by
// the termination condition (spec §4.3: "no task is EVENT_WAIT").
func (b *Bridge) NumWaiting() int { return b.waiting.NumPresent() }
