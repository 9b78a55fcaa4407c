package microkernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructuredError(t *testing.T) {
	err := NewError("bootstrap", ErrCodeInvalidConfig, "capacity must be positive")

	require.Equal(t, "bootstrap", err.Op)
	require.Equal(t, ErrCodeInvalidConfig, err.Code)
	require.Equal(t, "microkernel: bootstrap: capacity must be positive", err.Error())
}

func TestTaskError(t *testing.T) {
	err := NewTaskError("create", 7, ErrCodeInvalidPriority, "priority out of range")

	require.Equal(t, int32(7), err.Tid)
	require.Contains(t, err.Error(), "tid=7")
}

func TestWrapError(t *testing.T) {
	inner := errors.New("boom")
	wrapped := WrapError("bootstrap", inner)

	require.Equal(t, "bootstrap", wrapped.Op)
	require.ErrorIs(t, wrapped, inner)
	require.Equal(t, inner, wrapped.Unwrap())
}

func TestWrapErrorPreservesCode(t *testing.T) {
	inner := NewError("create", ErrCodeTableFull, "full")
	wrapped := WrapError("bootstrap", inner)

	require.Equal(t, ErrCodeTableFull, wrapped.Code)
}

func TestIsCode(t *testing.T) {
	err := NewError("create", ErrCodeTableFull, "full")
	require.True(t, IsCode(err, ErrCodeTableFull))
	require.False(t, IsCode(err, ErrCodeInvalidConfig))
	require.False(t, IsCode(nil, ErrCodeTableFull))
}

func TestKernelErrorSentinel(t *testing.T) {
	err := NewError("create", ErrCodeTableFull, "full")
	require.ErrorIs(t, err, ErrTableFull)
	require.False(t, errors.Is(err, ErrInvalidPriority))
}
