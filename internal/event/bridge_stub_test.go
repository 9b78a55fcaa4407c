//go:build !giouring
// +build !giouring

package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStubSource_InjectThenWait(t *testing.T) {
	s := NewStubSource(0)
	defer s.Close()

	s.Inject(UARTEventID, 'x')
	id, payload, ok := s.Wait()
	require.True(t, ok)
	require.Equal(t, UARTEventID, id)
	require.Equal(t, int32('x'), payload)
}

func TestStubSource_Ticks(t *testing.T) {
	s := NewStubSource(time.Millisecond)
	defer s.Close()

	id, payload, ok := s.Wait()
	require.True(t, ok)
	require.Equal(t, TickEventID, id)
	require.Equal(t, int32(0), payload)
}

func TestStubSource_CloseUnblocksWait(t *testing.T) {
	s := NewStubSource(0)
	done := make(chan struct{})
	go func() {
		_, _, ok := s.Wait()
		require.False(t, ok)
		close(done)
	}()
	s.Close()
	<-done
}
