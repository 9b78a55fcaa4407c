package syscall

import (
	"errors"
	"fmt"
	"time"

	"github.com/ts7200/microkernel/internal/event"
	"github.com/ts7200/microkernel/internal/logging"
	"github.com/ts7200/microkernel/internal/sched"
	"github.com/ts7200/microkernel/internal/srr"
	"github.com/ts7200/microkernel/internal/task"
)

// ErrInvalidPriority and ErrTableFull are Create's two failure codes
// (spec §6.1).
const (
	ErrInvalidPriority int32 = -1
	ErrTableFull       int32 = -2
	ErrNoParent        int32 = -1
)

// PerfSnapshot is supplied by the kernel's bootstrap to answer the Perf
// syscall without the dispatcher needing to own idle-time accounting
// itself (that lives alongside the main loop, which is what actually
// observes idle vs busy time).
type PerfSnapshot func(tid task.Tid) PerfStats

// ShutdownFunc is invoked once, from the dispatcher goroutine, when a
// task issues the Shutdown syscall.
type ShutdownFunc func(status int)

// MetricsRecorder receives one sample per Handle call: the syscall
// number, how long Handle took to dispatch it, and whether the
// dispatched result was a success or an error code. Kept as a plain
// func type rather than an interface so this package never imports the
// root package's Metrics type (which itself imports this package).
type MetricsRecorder func(num Number, latencyNs uint64, success bool)

// Dispatcher implements the Handle side of every syscall Number: it is
// the thing the kernel's main loop calls once per received Request.
type Dispatcher struct {
	table  *task.Table
	sched  *sched.Scheduler
	srr    *srr.Engine
	events *event.Bridge
	reqs   chan Request

	perf     PerfSnapshot
	shutdown ShutdownFunc
	metrics  MetricsRecorder
}

func NewDispatcher(table *task.Table, scheduler *sched.Scheduler, srrEngine *srr.Engine, events *event.Bridge, reqs chan Request, perf PerfSnapshot, shutdown ShutdownFunc) *Dispatcher {
	return &Dispatcher{
		table:    table,
		sched:    scheduler,
		srr:      srrEngine,
		events:   events,
		reqs:     reqs,
		perf:     perf,
		shutdown: shutdown,
	}
}

// SetMetricsRecorder wires an optional metrics sink into the
// dispatcher. Left nil, Handle records nothing — used by tests that
// have no Metrics instance to report into.
func (d *Dispatcher) SetMetricsRecorder(rec MetricsRecorder) {
	d.metrics = rec
}

// Spawn installs a fresh task descriptor for entryFn at priority,
// wiring its goroutine to wait for first activation, run entryFn with
// a bound Context, and implicitly Exit on return — the Go realization
// of spec §3's "lr points at the Exit trampoline". Used directly by
// bootstrap (for reserved Tids, via Table.CreateForced) and indirectly
// by the Create syscall handler below.
func (d *Dispatcher) Spawn(tid task.Tid, entryFn func(*Context)) func() {
	return func() {
		desc := d.table.MustGet(tid)
		<-desc.Resume
		ctx := NewContext(tid, d.table, d.reqs)
		entryFn(ctx)
		ctx.Exit()
	}
}

// Handle mutates kernel state for one received Request. It never
// blocks and never runs concurrently with another Handle call — it is
// meant to be invoked only from the kernel's single dispatcher
// goroutine select loop.
func (d *Dispatcher) Handle(req Request) {
	start := time.Now()
	success := true
	if d.metrics != nil {
		defer func() {
			d.metrics(req.Num, uint64(time.Since(start).Nanoseconds()), success)
		}()
	}

	switch req.Num {
	case Yield:
		d.finishImmediate(req.Tid, 0)

	case Exit:
		d.srr.ExitDrain(req.Tid)
		d.table.Free(req.Tid)

	case MyTid:
		d.finishImmediate(req.Tid, int32(req.Tid))

	case MyParentTid:
		rd := d.table.MustGet(req.Tid)
		if p, ok := rd.ParentTid.Get(); ok {
			d.finishImmediate(req.Tid, int32(p))
		} else {
			success = false
			d.finishImmediate(req.Tid, ErrNoParent)
		}

	case Create:
		success = d.handleCreate(req)

	case Send:
		ret, immediate := d.srr.Send(req.Tid, req.Receiver, req.Msg, req.ReplyBuf)
		if immediate {
			success = ret >= 0
			d.finishImmediate(req.Tid, ret)
		}

	case Receive:
		ret, immediate := d.srr.Receive(req.Tid, req.OutTid, req.RecvBuf)
		if immediate {
			d.finishImmediate(req.Tid, ret)
		}

	case Reply:
		ret := d.srr.Reply(req.Target, req.ReplyMsg)
		success = ret >= 0
		d.finishImmediate(req.Tid, ret)

	case AwaitEvent:
		ret, immediate := d.events.AwaitEvent(req.Tid, req.EventID)
		if immediate {
			success = ret >= 0
			d.finishImmediate(req.Tid, ret)
		}

	case Perf:
		if req.PerfBuf != nil && d.perf != nil {
			*req.PerfBuf = d.perf(req.Tid)
		}
		d.finishImmediate(req.Tid, 0)

	case Panic:
		success = false
		panic(fmt.Sprintf("task %d panicked: %s", req.Tid, req.PanicMsg))

	case Shutdown:
		if d.shutdown != nil {
			d.shutdown(req.ExitStatus)
		}

	default:
		success = false
		panic(fmt.Sprintf("syscall: unknown syscall number %d", req.Num))
	}
}

// finishImmediate is every handler's common tail: write the return
// value now and re-queue the caller at its own priority. Blocking
// calls (Send/Receive/AwaitEvent that don't complete immediately) skip
// this — they leave the caller's state as SEND_WAIT/RECV_WAIT/
// EVENT_WAIT, off the ready queue, per spec §4.3.
func (d *Dispatcher) finishImmediate(tid task.Tid, value int32) {
	rd := d.table.MustGet(tid)
	d.table.WriteReturn(tid, value)
	d.sched.Push(tid, rd.Priority)
}

// handleCreate returns whether creation succeeded, for the caller's
// metrics sample.
func (d *Dispatcher) handleCreate(req Request) bool {
	child, err := d.table.Create(req.Priority, task.Some(req.Tid), req.EntryFn, func(tid task.Tid) func() {
		return d.Spawn(tid, req.EntryFn)
	})
	if err != nil {
		code := ErrInvalidPriority
		if errors.Is(err, task.ErrOutOfDescriptors) {
			code = ErrTableFull
		}
		d.finishImmediate(req.Tid, code)
		return false
	}
	logging.Debugf("syscall: task %d created child %d at priority %d", req.Tid, child, req.Priority)
	d.sched.Push(child, req.Priority)
	d.finishImmediate(req.Tid, int32(child))
	return true
}
