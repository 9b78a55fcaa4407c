package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_PushPopFIFO(t *testing.T) {
	r := NewRing[string](4)
	require.True(t, r.IsEmpty())

	require.NoError(t, r.PushBack("a"))
	require.NoError(t, r.PushBack("b"))
	require.NoError(t, r.PushBack("c"))
	require.Equal(t, 3, r.Size())
	require.Equal(t, 1, r.Available())

	v, ok := r.PopFront()
	require.True(t, ok)
	require.Equal(t, "a", v)

	v, ok = r.PopFront()
	require.True(t, ok)
	require.Equal(t, "b", v)

	v, ok = r.PopFront()
	require.True(t, ok)
	require.Equal(t, "c", v)

	_, ok = r.PopFront()
	require.False(t, ok)
}

func TestRing_Full(t *testing.T) {
	r := NewRing[int](2)
	require.NoError(t, r.PushBack(1))
	require.NoError(t, r.PushBack(2))
	require.ErrorIs(t, r.PushBack(3), ErrFull)
	require.Equal(t, 0, r.Available())
}

func TestRing_PeekFrontDoesNotRemove(t *testing.T) {
	r := NewRing[int](4)
	require.NoError(t, r.PushBack(10))
	v, ok := r.PeekFront()
	require.True(t, ok)
	require.Equal(t, 10, v)
	require.Equal(t, 1, r.Size())
}

func TestRing_PeekAt(t *testing.T) {
	r := NewRing[int](4)
	require.NoError(t, r.PushBack(10))
	require.NoError(t, r.PushBack(20))
	require.NoError(t, r.PushBack(30))

	v, ok := r.PeekAt(0)
	require.True(t, ok)
	require.Equal(t, 10, v)

	v, ok = r.PeekAt(2)
	require.True(t, ok)
	require.Equal(t, 30, v)

	_, ok = r.PeekAt(3)
	require.False(t, ok)

	_, ok = r.PeekAt(-1)
	require.False(t, ok)
}

func TestRing_WrapsAroundBackingArray(t *testing.T) {
	r := NewRing[int](3)
	require.NoError(t, r.PushBack(1))
	require.NoError(t, r.PushBack(2))
	_, _ = r.PopFront()
	require.NoError(t, r.PushBack(3))
	require.NoError(t, r.PushBack(4))
	require.ErrorIs(t, r.PushBack(5), ErrFull)

	var got []int
	for {
		v, ok := r.PopFront()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []int{2, 3, 4}, got)
}

func TestRing_Clear(t *testing.T) {
	r := NewRing[int](4)
	require.NoError(t, r.PushBack(1))
	require.NoError(t, r.PushBack(2))
	r.Clear()
	require.True(t, r.IsEmpty())
	require.Equal(t, 4, r.Available())
	require.NoError(t, r.PushBack(9))
	v, ok := r.PeekFront()
	require.True(t, ok)
	require.Equal(t, 9, v)
}
