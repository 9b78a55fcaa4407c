package srr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ts7200/microkernel/internal/sched"
	"github.com/ts7200/microkernel/internal/task"
)

func newFixture(t *testing.T, capacity int) (*task.Table, *sched.Scheduler, *Engine) {
	t.Helper()
	tb := task.NewTable(capacity)
	sc := sched.New(capacity, task.Tid(capacity-1))
	return tb, sc, New(tb, sc)
}

func mustCreate(t *testing.T, tb *task.Table, priority int) task.Tid {
	t.Helper()
	tid, err := tb.Create(priority, task.NoTid, func() {}, func(task.Tid) func() { return func() {} })
	require.NoError(t, err)
	return tid
}

func TestSend_ToBadTid(t *testing.T) {
	tb, _, e := newFixture(t, 4)
	s := mustCreate(t, tb, 1)
	ret, immediate := e.Send(s, task.Tid(99), []byte("x"), make([]byte, 8))
	require.True(t, immediate)
	require.Equal(t, ErrBadTid, ret)
}

func TestSend_ThenReceiveThenReply_RoundTrip(t *testing.T) {
	tb, _, e := newFixture(t, 8)
	s := mustCreate(t, tb, 3)
	r := mustCreate(t, tb, 2)

	replyBuf := make([]byte, 8)
	_, immediate := e.Send(s, r, []byte("x"), replyBuf)
	require.False(t, immediate)
	require.Equal(t, task.SendWait, tb.MustGet(s).State.Tag)

	var outTid task.Tid
	recvBuf := make([]byte, 8)
	n, ok := e.Receive(r, &outTid, recvBuf)
	require.True(t, ok)
	require.Equal(t, int32(1), n)
	require.Equal(t, s, outTid)
	require.Equal(t, byte('x'), recvBuf[0])
	require.Equal(t, task.ReplyWait, tb.MustGet(s).State.Tag)

	n = e.Reply(s, []byte("ok"))
	require.Equal(t, int32(2), n)
	require.Equal(t, task.Ready, tb.MustGet(s).State.Tag)
	require.Equal(t, int32(2), tb.MustGet(s).PendingReturn)
	require.Equal(t, replyBuf[:2], []byte("ok"))
}

func TestReceive_BeforeSend_Blocks(t *testing.T) {
	tb, _, e := newFixture(t, 8)
	r := mustCreate(t, tb, 2)
	s := mustCreate(t, tb, 3)

	var outTid task.Tid
	recvBuf := make([]byte, 8)
	_, ok := e.Receive(r, &outTid, recvBuf)
	require.False(t, ok)
	require.Equal(t, task.RecvWait, tb.MustGet(r).State.Tag)

	_, immediate := e.Send(s, r, []byte("y"), make([]byte, 8))
	require.False(t, immediate)
	require.Equal(t, task.Ready, tb.MustGet(r).State.Tag)
	require.Equal(t, int32(1), tb.MustGet(r).PendingReturn)
	require.Equal(t, task.ReplyWait, tb.MustGet(s).State.Tag)
}

func TestSend_FIFOWithinReceiver(t *testing.T) {
	tb, _, e := newFixture(t, 8)
	r := mustCreate(t, tb, 2)
	s1 := mustCreate(t, tb, 5)
	s2 := mustCreate(t, tb, 1)

	e.Send(s1, r, []byte("x"), make([]byte, 8))
	e.Send(s2, r, []byte("y"), make([]byte, 8))

	var outTid task.Tid
	buf := make([]byte, 8)
	e.Receive(r, &outTid, buf)
	require.Equal(t, s1, outTid, "FIFO order, not priority")

	e.Receive(r, &outTid, buf)
	require.Equal(t, s2, outTid)
}

func TestReply_TargetNotInReplyWait(t *testing.T) {
	tb, _, e := newFixture(t, 8)
	r := mustCreate(t, tb, 1)
	require.Equal(t, ErrTerminated, e.Reply(r, []byte("x")))
}

func TestReply_BadTid(t *testing.T) {
	_, _, e := newFixture(t, 8)
	require.Equal(t, ErrBadTid, e.Reply(task.Tid(99), []byte("x")))
}

func TestExitDrain_WakesQueuedSendersWithTerminated(t *testing.T) {
	tb, _, e := newFixture(t, 8)
	r := mustCreate(t, tb, 1)
	s1 := mustCreate(t, tb, 1)
	s2 := mustCreate(t, tb, 1)
	e.Send(s1, r, []byte("a"), make([]byte, 8))
	e.Send(s2, r, []byte("b"), make([]byte, 8))

	e.ExitDrain(r)

	require.Equal(t, task.Ready, tb.MustGet(s1).State.Tag)
	require.Equal(t, ErrTerminated, tb.MustGet(s1).PendingReturn)
	require.Equal(t, task.Ready, tb.MustGet(s2).State.Tag)
	require.Equal(t, ErrTerminated, tb.MustGet(s2).PendingReturn)
}

func TestSend_BoundaryTruncatesToCapacity(t *testing.T) {
	tb, _, e := newFixture(t, 8)
	r := mustCreate(t, tb, 2)
	s := mustCreate(t, tb, 2)

	var outTid task.Tid
	small := make([]byte, 2)
	e.Receive(r, &outTid, small)
	n, _ := e.Send(s, r, []byte("hello"), make([]byte, 8))
	_ = n // Send's own return is deferred; check the receiver's delivered count instead.
	require.Equal(t, int32(2), tb.MustGet(r).PendingReturn)
	require.Equal(t, []byte("he"), small)
}
