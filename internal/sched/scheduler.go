// Package sched implements the ready queue and the priority-preemptive
// selection policy: which task runs next, and when the kernel has
// nothing left to do.
package sched

import (
	"github.com/ts7200/microkernel/internal/containers"
	"github.com/ts7200/microkernel/internal/task"
)

// Scheduler owns the ready queue. Larger priority values are scheduled
// first; ties are broken FIFO by insertion order (spec §3's ready
// queue, a max-heap keyed by (priority, ticket)).
type Scheduler struct {
	ready   *containers.PriorityQueue[task.Tid]
	idleTid task.Tid
}

// New constructs a scheduler whose ready queue holds at most capacity
// tasks (the task table's capacity — spec §9: "the ready queue capacity
// equals the task table capacity"). idleTid is the reserved idle task,
// excluded from the termination check below.
func New(capacity int, idleTid task.Tid) *Scheduler {
	return &Scheduler{
		ready:   containers.NewPriorityQueue[task.Tid](capacity),
		idleTid: idleTid,
	}
}

// Push enqueues tid at priority. Ready-queue overflow is a kernel panic
// (spec §7), not a recoverable error — the capacity equals the task
// table's, so this can only happen from a corrupted invariant.
func (s *Scheduler) Push(tid task.Tid, priority int) {
	if err := s.ready.Push(tid, priority); err != nil {
		panic("sched: ready queue overflow")
	}
}

// Schedule pops the highest-priority ready task. Idle's priority is the
// unique minimum, so it is only popped once every user task has either
// exited or blocked.
func (s *Scheduler) Schedule() (task.Tid, bool) {
	return s.ready.Pop()
}

// Len reports how many tasks are currently ready (for diagnostics/tests).
func (s *Scheduler) Len() int { return s.ready.Size() }

// IsIdle reports whether tid is the reserved idle task.
func (s *Scheduler) IsIdle(tid task.Tid) bool { return tid == s.idleTid }
