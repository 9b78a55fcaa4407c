// Package syscall decodes and dispatches the kernel's supervisor calls:
// the numbering table, the request/response shape a task goroutine
// marshals into, and the handler that mutates kernel state on the
// dispatcher goroutine's behalf.
package syscall

import "github.com/ts7200/microkernel/internal/task"

// Number is the stable wire contract from spec §4.6/§6.1.
type Number int32

const (
	Yield Number = iota
	Exit
	MyParentTid
	MyTid
	Create
	Send
	Receive
	Reply
	AwaitEvent
	Perf
	Panic
	Shutdown
)

func (n Number) String() string {
	switch n {
	case Yield:
		return "Yield"
	case Exit:
		return "Exit"
	case MyParentTid:
		return "MyParentTid"
	case MyTid:
		return "MyTid"
	case Create:
		return "Create"
	case Send:
		return "Send"
	case Receive:
		return "Receive"
	case Reply:
		return "Reply"
	case AwaitEvent:
		return "AwaitEvent"
	case Perf:
		return "Perf"
	case Panic:
		return "Panic"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// PerfStats is the payload the original's perf.cc fills for a calling
// task: idle-time percentage since boot and the wall-clock delta since
// the previous Perf call by any task (or since the kernel was
// constructed, for the first call); the delta is not tracked per task
// (spec.md doesn't define this payload;
// supplemented from original_source/src/kernel/handlers/perf.cc).
type PerfStats struct {
	IdleTimePct    float64
	SinceLastCall  int64 // nanoseconds
}

// Request is what a task goroutine sends on the dispatcher's shared
// channel to perform a syscall — the Go analogue of the trap frame
// §4.6 describes the hardware building on a real supervisor call.
// Only the fields relevant to Num are meaningful; unused fields are
// the zero value.
type Request struct {
	Tid task.Tid
	Num Number

	// Create
	Priority int
	EntryFn  func(*Context)

	// Send
	Receiver task.Tid
	Msg      []byte
	ReplyBuf []byte

	// Receive
	OutTid  *task.Tid
	RecvBuf []byte

	// Reply
	Target   task.Tid
	ReplyMsg []byte

	// AwaitEvent
	EventID int

	// Perf
	PerfBuf *PerfStats

	// Panic
	PanicMsg string

	// Shutdown
	ExitStatus int
}
