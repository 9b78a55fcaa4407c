package syscall

import "github.com/ts7200/microkernel/internal/task"

// Context is the per-task handle a task's entry function uses to make
// syscalls. It is the Go analogue of the supervisor-call trap: call
// sends a Request on the shared channel, then blocks on the task's own
// resume channel until the dispatcher goroutine has mutated kernel
// state and written a return value — whether that happens immediately
// or only after some later Reply or interrupt.
type Context struct {
	tid   task.Tid
	table *task.Table
	reqs  chan<- Request
}

// NewContext binds a syscall-issuing handle to tid. Built once per
// task, inside the goroutine wrapper task.Table.Create spawns.
func NewContext(tid task.Tid, table *task.Table, reqs chan<- Request) *Context {
	return &Context{tid: tid, table: table, reqs: reqs}
}

func (c *Context) Tid() task.Tid { return c.tid }

// call performs the common request/block/read-return sequence every
// syscall but Exit follows.
func (c *Context) call(req Request) int32 {
	req.Tid = c.tid
	c.reqs <- req
	<-c.table.MustGet(c.tid).Resume
	return c.table.MustGet(c.tid).PendingReturn
}

func (c *Context) Yield() { c.call(Request{Num: Yield}) }

func (c *Context) MyTid() task.Tid { return task.Tid(c.call(Request{Num: MyTid})) }

func (c *Context) MyParentTid() int32 { return c.call(Request{Num: MyParentTid}) }

// Create spawns a child task running entryFn at priority. Returns the
// new Tid, or a negative error code (spec §6.1: -1 invalid priority,
// -2 table full).
func (c *Context) Create(priority int, entryFn func(*Context)) int32 {
	return c.call(Request{Num: Create, Priority: priority, EntryFn: entryFn})
}

func (c *Context) Send(receiver task.Tid, msg, replyBuf []byte) int32 {
	return c.call(Request{Num: Send, Receiver: receiver, Msg: msg, ReplyBuf: replyBuf})
}

func (c *Context) Receive(outTid *task.Tid, recvBuf []byte) int32 {
	return c.call(Request{Num: Receive, OutTid: outTid, RecvBuf: recvBuf})
}

func (c *Context) Reply(target task.Tid, msg []byte) int32 {
	return c.call(Request{Num: Reply, Target: target, ReplyMsg: msg})
}

func (c *Context) AwaitEvent(eventID int) int32 {
	return c.call(Request{Num: AwaitEvent, EventID: eventID})
}

func (c *Context) Perf(buf *PerfStats) int32 {
	return c.call(Request{Num: Perf, PerfBuf: buf})
}

// Panic surfaces a task-attributed kernel panic (spec §7). It never
// returns — the dispatcher goroutine panics before writing a reply.
func (c *Context) Panic(msg string) {
	c.call(Request{Num: Panic, PanicMsg: msg})
}

// Shutdown requests early termination, bypassing the normal
// only-idle-runnable condition (spec §6.3).
func (c *Context) Shutdown(status int) {
	c.call(Request{Num: Shutdown, ExitStatus: status})
}

// Exit deallocates the caller's task descriptor and ends its
// goroutine. Unlike every other call, Exit does not wait on Resume:
// the dispatcher frees the slot and never signals it again, so
// blocking here would leak the goroutine forever.
func (c *Context) Exit() {
	c.reqs <- Request{Tid: c.tid, Num: Exit}
}
