package task

import (
	"fmt"

	"github.com/ts7200/microkernel/internal/logging"
)

// ErrInvalidPriority is returned by Create when priority is negative.
var ErrInvalidPriority = fmt.Errorf("task: negative priority")

// ErrOutOfDescriptors is returned by Create when the table has no free slot.
var ErrOutOfDescriptors = fmt.Errorf("task: out of task descriptors")

// ErrTidTaken is returned by CreateForced when the requested slot is in use.
var ErrTidTaken = fmt.Errorf("task: requested tid already allocated")

// Descriptor is a single task's record: identity, scheduling fields,
// blocking state, and the per-receiver send-queue links (intrusive,
// keyed by Tid index — see spec §9, no heap pointers, no cycles
// possible because a task can appear in at most one send queue).
type Descriptor struct {
	Tid       Tid
	Priority  int
	ParentTid OptTid
	State     State

	SendQueueHead OptTid
	SendQueueTail OptTid

	// Resume is the Go analogue of a saved stack pointer: a task
	// goroutine blocks receiving from it between activations. The
	// dispatcher sends on it only when schedule() actually picks this
	// Tid, whether this is its first activation or a resumption after
	// a syscall. PendingReturn carries the value a syscall should
	// report once that signal arrives — set immediately for
	// non-blocking calls, set later (by Reply, or an interrupt) for
	// calls that block.
	Resume        chan struct{}
	PendingReturn int32

	Frame Frame
}

// Table is the fixed-capacity task descriptor table. It is mutated
// only from the kernel's single dispatcher goroutine (spec §5: "shared
// resources ... mutated only from the kernel's trap context"), so it
// holds no internal locking.
type Table struct {
	capacity int
	slots    []*Descriptor
	count    int
}

// NewTable constructs a table with room for capacity task descriptors.
func NewTable(capacity int) *Table {
	return &Table{capacity: capacity, slots: make([]*Descriptor, capacity)}
}

func (t *Table) Capacity() int { return t.capacity }
func (t *Table) Count() int    { return t.count }

// Get returns the descriptor for tid, if the slot is occupied.
func (t *Table) Get(tid Tid) (*Descriptor, bool) {
	if tid < 0 || int(tid) >= len(t.slots) {
		return nil, false
	}
	d := t.slots[tid]
	return d, d != nil
}

// MustGet is Get for callers that have already established the tid is
// live — e.g. the currently-executing task.
func (t *Table) MustGet(tid Tid) *Descriptor {
	d, ok := t.Get(tid)
	if !ok {
		panic(fmt.Sprintf("task: MustGet(%d) on unallocated slot", tid))
	}
	return d
}

// Create allocates the lowest free slot for a new task descriptor,
// builds its initial frame, and returns its Tid. makeEntry receives
// the assigned Tid (not known until allocation) and must return the
// zero-argument goroutine body; Create starts that goroutine, blocked
// on its resume channel until the scheduler first activates it.
func (t *Table) Create(priority int, parent OptTid, entryFn any, makeEntry func(Tid) func()) (Tid, error) {
	if priority < 0 {
		return 0, ErrInvalidPriority
	}
	slot := t.lowestFreeSlot()
	if slot < 0 {
		return 0, ErrOutOfDescriptors
	}
	return t.install(Tid(slot), priority, parent, entryFn, makeEntry)
}

// CreateForced installs a descriptor at an explicit Tid, bypassing both
// the free-slot scan and the non-negative priority check. Used only by
// bootstrap to place idle (negative priority, reserved slot), the name
// server, and the first user task at their reserved ids.
func (t *Table) CreateForced(tid Tid, priority int, parent OptTid, entryFn any, makeEntry func(Tid) func()) (Tid, error) {
	if tid < 0 || int(tid) >= len(t.slots) {
		return 0, fmt.Errorf("task: forced tid %d out of range", tid)
	}
	if t.slots[tid] != nil {
		return 0, ErrTidTaken
	}
	return t.install(tid, priority, parent, entryFn, makeEntry)
}

func (t *Table) install(tid Tid, priority int, parent OptTid, entryFn any, makeEntry func(Tid) func()) (Tid, error) {
	d := &Descriptor{
		Tid:       tid,
		Priority:  priority,
		ParentTid: parent,
		State:     ReadyState(),
		Resume:    make(chan struct{}),
		Frame:     NewInitialFrame(entryFn),
	}
	t.slots[tid] = d
	t.count++
	go makeEntry(tid)()
	logging.Debugf("task %d created: priority=%d parent=%s entry=%s", tid, priority, parent, d.Frame.EntryFn)
	return tid, nil
}

func (t *Table) lowestFreeSlot() int {
	for i, d := range t.slots {
		if d == nil {
			return i
		}
	}
	return -1
}

// DrainSendQueue unlinks and returns, in FIFO order, every Tid queued
// on tid's send queue, clearing the head/tail links. The caller
// (srr.Engine.ExitDrain, run by the Exit handler) is responsible for transitioning each
// returned Tid to READY, delivering the terminated-receiver return
// code, and pushing it onto the ready queue — Table only owns the
// intrusive link structure, not scheduling.
func (t *Table) DrainSendQueue(tid Tid) []Tid {
	d := t.MustGet(tid)
	var drained []Tid
	cur := d.SendQueueHead
	for {
		next, ok := cur.Get()
		if !ok {
			break
		}
		sender := t.MustGet(next)
		drained = append(drained, next)
		cur = sender.State.Next
		sender.State.Next = NoTid
	}
	d.SendQueueHead = NoTid
	d.SendQueueTail = NoTid
	return drained
}

// Free deallocates tid's slot entirely. The caller must have already
// drained its send queue and woken any sender.
func (t *Table) Free(tid Tid) {
	d := t.MustGet(tid)
	d.ParentTid = NoTid
	t.slots[tid] = nil
	t.count--
	logging.Debugf("task %d exited", tid)
}

// Enqueue appends sender onto receiver's FIFO send queue.
func (t *Table) Enqueue(receiver, sender Tid) {
	r := t.MustGet(receiver)
	s := t.MustGet(sender)
	s.State.Next = NoTid
	if tail, ok := r.SendQueueTail.Get(); ok {
		t.MustGet(tail).State.Next = Some(sender)
	} else {
		r.SendQueueHead = Some(sender)
	}
	r.SendQueueTail = Some(sender)
}

// PopSendQueue removes and returns the head of receiver's send queue.
func (t *Table) PopSendQueue(receiver Tid) (Tid, bool) {
	r := t.MustGet(receiver)
	head, ok := r.SendQueueHead.Get()
	if !ok {
		return 0, false
	}
	h := t.MustGet(head)
	r.SendQueueHead = h.State.Next
	if !r.SendQueueHead.IsSome() {
		r.SendQueueTail = NoTid
	}
	h.State.Next = NoTid
	return head, true
}

// WriteReturn records value as the result of tid's most recent (or
// still-pending) syscall, matching §3's "sp points to a valid saved
// register frame": the write happens now, delivery happens later, at
// tid's next activation.
func (t *Table) WriteReturn(tid Tid, value int32) {
	t.MustGet(tid).PendingReturn = value
}
