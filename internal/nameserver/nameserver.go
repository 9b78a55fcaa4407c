// Package nameserver implements the single canonical string-to-Tid
// registry spec.md §9 asks reimplementers to pick, in place of the two
// incompatible originals (kernel/tasks/nameserver.cc and
// user/tasks/nameserver.cc). It is an ordinary SRR client: a server
// loop run as a task, plus RegisterAs/WhoIs helpers any other task
// calls over Send/Receive/Reply.
package nameserver

import (
	"encoding/binary"

	"github.com/ts7200/microkernel/internal/syscall"
	"github.com/ts7200/microkernel/internal/task"
)

// Tid is the reserved id for the name server task (DESIGN.md: spec.md's
// GLOSSARY entry, not its §3 prose, wins the Tid-0-vs-1 contradiction).
const Tid task.Tid = 1

// MaxNameLen bounds a registered name the way the original's fixed
// buffers do (its StringArena is unbounded total size but each
// message's name field is a fixed-size C array).
const MaxNameLen = 32

type messageKind uint8

const (
	kindWhoIs messageKind = iota
	kindRegisterAs
	kindShutdown
)

// wireLen is kind(1) + nameLen(1) + name(MaxNameLen) + tid(4).
const wireLen = 1 + 1 + MaxNameLen + 4

type request struct {
	kind    messageKind
	name    string
	callTid int32 // only meaningful for RegisterAs
}

func (r request) marshal() []byte {
	buf := make([]byte, wireLen)
	buf[0] = byte(r.kind)
	n := len(r.name)
	if n > MaxNameLen {
		n = MaxNameLen
	}
	buf[1] = byte(n)
	copy(buf[2:2+MaxNameLen], r.name[:n])
	binary.LittleEndian.PutUint32(buf[2+MaxNameLen:], uint32(r.callTid))
	return buf
}

func unmarshalRequest(buf []byte) request {
	var r request
	if len(buf) < wireLen {
		return r
	}
	r.kind = messageKind(buf[0])
	n := int(buf[1])
	if n > MaxNameLen {
		n = MaxNameLen
	}
	r.name = string(buf[2 : 2+n])
	r.callTid = int32(binary.LittleEndian.Uint32(buf[2+MaxNameLen:]))
	return r
}

type response struct {
	found bool
	tid   int32
}

func (r response) marshal() []byte {
	buf := make([]byte, 5)
	if r.found {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:], uint32(r.tid))
	return buf
}

func unmarshalResponse(buf []byte) response {
	var r response
	if len(buf) < 5 {
		return r
	}
	r.found = buf[0] != 0
	r.tid = int32(binary.LittleEndian.Uint32(buf[1:]))
	return r
}

// Task is the name server's entry point: receive, look up or register,
// reply, forever — until it is asked to shut down. Install it at Tid
// via task table's CreateForced during bootstrap.
func Task(ctx *syscall.Context) {
	names := make(map[string]task.Tid)

	reqBuf := make([]byte, wireLen)
	for {
		var sender task.Tid
		n := ctx.Receive(&sender, reqBuf)
		if n < 0 {
			continue
		}
		req := unmarshalRequest(reqBuf[:n])

		switch req.kind {
		case kindShutdown:
			ctx.Reply(sender, response{}.marshal())
			return

		case kindWhoIs:
			tid, ok := names[req.name]
			ctx.Reply(sender, response{found: ok, tid: int32(tid)}.marshal())

		case kindRegisterAs:
			names[req.name] = task.Tid(req.callTid)
			ctx.Reply(sender, response{found: true}.marshal())
		}
	}
}

// RegisterAs binds name to the calling task's own Tid. Returns 0 on
// success, -1 if the rendezvous with the name server failed.
func RegisterAs(ctx *syscall.Context, name string) int32 {
	req := request{kind: kindRegisterAs, name: name, callTid: int32(ctx.MyTid())}
	replyBuf := make([]byte, 5)
	if ctx.Send(Tid, req.marshal(), replyBuf) < 0 {
		return -1
	}
	res := unmarshalResponse(replyBuf)
	if !res.found {
		return -1
	}
	return 0
}

// WhoIs looks up name, returning its registered Tid or -1 if unknown
// or the rendezvous failed.
func WhoIs(ctx *syscall.Context, name string) int32 {
	req := request{kind: kindWhoIs, name: name}
	replyBuf := make([]byte, 5)
	if ctx.Send(Tid, req.marshal(), replyBuf) < 0 {
		return -1
	}
	res := unmarshalResponse(replyBuf)
	if !res.found {
		return -1
	}
	return res.tid
}
