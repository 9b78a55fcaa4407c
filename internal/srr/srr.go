// Package srr implements the synchronous Send/Receive/Reply rendezvous:
// the three-phase handshake and its per-receiver FIFO send queue.
package srr

import (
	"github.com/ts7200/microkernel/internal/sched"
	"github.com/ts7200/microkernel/internal/task"
)

// Sentinel return codes, per spec §4.4. ErrBadTid and ErrTerminated are
// observable by callers; the blocked/internal sentinels never escape —
// a blocked caller's real return value is written later, when it wakes.
const (
	ErrBadTid     int32 = -1
	ErrTerminated int32 = -2
)

// Engine mutates the task table and ready queue to implement SRR. It
// holds no state of its own beyond references to the two collaborators
// — all the interesting state (send queues, wait reasons) lives in the
// task descriptors themselves.
type Engine struct {
	table *task.Table
	sched *sched.Scheduler
}

func New(table *task.Table, scheduler *sched.Scheduler) *Engine {
	return &Engine{table: table, sched: scheduler}
}

// Send implements the sender's half of the rendezvous. It returns
// (immediate, true) when the caller's return value is already known
// (only the invalid-Tid case); otherwise it mutates the caller's own
// descriptor into SEND_WAIT or REPLY_WAIT and returns (0, false) —
// the caller blocks, and its eventual return value is written by
// Reply (the byte count) or by ExitDrain (ErrTerminated).
func (e *Engine) Send(sender task.Tid, receiver task.Tid, msg []byte, replyBuf []byte) (int32, bool) {
	rd, ok := e.table.Get(receiver)
	if !ok {
		return ErrBadTid, true
	}

	sd := e.table.MustGet(sender)
	if rd.State.Tag == task.RecvWait {
		n := copy(rd.State.RecvBuf, msg)
		if rd.State.OutTid != nil {
			*rd.State.OutTid = sender
		}
		rd.State = task.ReadyState()
		e.table.WriteReturn(receiver, int32(n))
		e.sched.Push(receiver, rd.Priority)

		sd.State = task.State{Tag: task.ReplyWait, ReplyBuf: replyBuf}
	} else {
		e.table.Enqueue(receiver, sender)
		sd.State = task.State{Tag: task.SendWait, Msg: msg, ReplyBuf: replyBuf}
	}
	return 0, false
}

// Receive implements the receiver's half. If a sender is already
// queued, it completes immediately and returns (n, true). Otherwise the
// caller's descriptor transitions to RECV_WAIT and the function returns
// (0, false); the caller blocks until a future Send delivers to it.
func (e *Engine) Receive(receiver task.Tid, outTid *task.Tid, recvBuf []byte) (int32, bool) {
	rd := e.table.MustGet(receiver)
	sender, ok := e.table.PopSendQueue(receiver)
	if !ok {
		rd.State = task.State{Tag: task.RecvWait, OutTid: outTid, RecvBuf: recvBuf}
		return 0, false
	}

	sd := e.table.MustGet(sender)
	n := copy(recvBuf, sd.State.Msg)
	if outTid != nil {
		*outTid = sender
	}
	replyBuf := sd.State.ReplyBuf
	sd.State = task.State{Tag: task.ReplyWait, ReplyBuf: replyBuf}
	return int32(n), true
}

// Reply implements the third phase: waking a sender that is blocked in
// REPLY_WAIT. Returns the byte count delivered to the caller of Reply
// (the same count written into the target's return slot), or one of
// the two error codes.
func (e *Engine) Reply(target task.Tid, msg []byte) int32 {
	td, ok := e.table.Get(target)
	if !ok {
		return ErrBadTid
	}
	if td.State.Tag != task.ReplyWait {
		return ErrTerminated
	}
	n := copy(td.State.ReplyBuf, msg)
	td.State = task.ReadyState()
	e.table.WriteReturn(target, int32(n))
	e.sched.Push(target, td.Priority)
	return int32(n)
}

// ExitDrain implements the Exit-time send-queue drain from spec §4.2:
// every task still queued to send to the exiting receiver is woken with
// ErrTerminated and returned to the ready queue.
func (e *Engine) ExitDrain(exiting task.Tid) {
	for _, sender := range e.table.DrainSendQueue(exiting) {
		sd := e.table.MustGet(sender)
		sd.State = task.ReadyState()
		e.table.WriteReturn(sender, ErrTerminated)
		e.sched.Push(sender, sd.Priority)
	}
}
