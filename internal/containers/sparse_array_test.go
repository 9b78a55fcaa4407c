package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSparseArray_PutTakeHas(t *testing.T) {
	a := NewSparseArray[int](64)
	require.False(t, a.Has(4))

	a.Put(4, 100)
	require.True(t, a.Has(4))
	require.Equal(t, 1, a.NumPresent())

	v, ok := a.Get(4)
	require.True(t, ok)
	require.Equal(t, 100, v)
	require.Equal(t, 1, a.NumPresent()) // Get does not remove

	taken, ok := a.Take(4)
	require.True(t, ok)
	require.Equal(t, 100, taken)
	require.False(t, a.Has(4))
	require.Equal(t, 0, a.NumPresent())
}

func TestSparseArray_OutOfRange(t *testing.T) {
	a := NewSparseArray[int](8)
	require.False(t, a.Has(100))
	a.Put(100, 1) // silently ignored
	require.Equal(t, 0, a.NumPresent())
	_, ok := a.Take(-1)
	require.False(t, ok)
}

func TestSparseArray_PutOverwriteDoesNotDoubleCount(t *testing.T) {
	a := NewSparseArray[int](8)
	a.Put(1, 10)
	a.Put(1, 20)
	require.Equal(t, 1, a.NumPresent())
	v, _ := a.Get(1)
	require.Equal(t, 20, v)
}
