package sched

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ts7200/microkernel/internal/task"
)

func TestSchedule_HigherPriorityFirst(t *testing.T) {
	s := New(8, task.Tid(7))

	s.Push(task.Tid(1), 1)
	s.Push(task.Tid(2), 5)
	s.Push(task.Tid(3), 3)

	tid, ok := s.Schedule()
	require.True(t, ok)
	require.Equal(t, task.Tid(2), tid)

	tid, ok = s.Schedule()
	require.True(t, ok)
	require.Equal(t, task.Tid(3), tid)

	tid, ok = s.Schedule()
	require.True(t, ok)
	require.Equal(t, task.Tid(1), tid)
}

func TestSchedule_FIFOWithinPriority(t *testing.T) {
	s := New(8, task.Tid(7))

	s.Push(task.Tid(1), 2)
	s.Push(task.Tid(2), 2)
	s.Push(task.Tid(3), 2)
	s.Push(task.Tid(4), 2)

	var order []task.Tid
	for i := 0; i < 4; i++ {
		tid, ok := s.Schedule()
		require.True(t, ok)
		order = append(order, tid)
	}

	require.Equal(t, []task.Tid{1, 2, 3, 4}, order)
}

func TestSchedule_EmptyQueue(t *testing.T) {
	s := New(4, task.Tid(3))
	_, ok := s.Schedule()
	require.False(t, ok)
}

func TestIsIdle(t *testing.T) {
	s := New(4, task.Tid(3))
	require.True(t, s.IsIdle(task.Tid(3)))
	require.False(t, s.IsIdle(task.Tid(0)))
}

func TestPush_OverflowPanics(t *testing.T) {
	s := New(1, task.Tid(0))
	s.Push(task.Tid(1), 1)
	require.Panics(t, func() { s.Push(task.Tid(2), 1) })
}
