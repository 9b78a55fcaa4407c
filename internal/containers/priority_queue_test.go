package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_HighestPriorityFirst(t *testing.T) {
	q := NewPriorityQueue[string](8)
	require.NoError(t, q.Push("low", 1))
	require.NoError(t, q.Push("high", 5))
	require.NoError(t, q.Push("mid", 3))

	v, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, "high", v)

	v, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, "mid", v)

	v, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, "low", v)
}

func TestPriorityQueue_FIFOWithinPriority(t *testing.T) {
	q := NewPriorityQueue[string](8)
	require.NoError(t, q.Push("T1", 2))
	require.NoError(t, q.Push("T2", 2))
	require.NoError(t, q.Push("T3", 2))
	require.NoError(t, q.Push("T4", 2))

	for _, want := range []string{"T1", "T2", "T3", "T4"} {
		got, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestPriorityQueue_Full(t *testing.T) {
	q := NewPriorityQueue[int](2)
	require.NoError(t, q.Push(1, 0))
	require.NoError(t, q.Push(2, 0))
	require.ErrorIs(t, q.Push(3, 0), ErrFull)
}

func TestPriorityQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewPriorityQueue[int](4)
	q.Push(10, 1)
	v, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 10, v)
	require.Equal(t, 1, q.Size())
}
