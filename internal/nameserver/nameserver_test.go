package nameserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	microkernel "github.com/ts7200/microkernel"
	"github.com/ts7200/microkernel/internal/nameserver"
	"github.com/ts7200/microkernel/internal/syscall"
)

func TestRegisterAsThenWhoIs(t *testing.T) {
	resultCh := make(chan int32, 1)

	first := func(ctx *syscall.Context) {
		ctx.Create(1, func(server *syscall.Context) {
			require.EqualValues(t, 0, nameserver.RegisterAs(server, "train-controller"))
		})

		// Give the registering task a turn before looking it up.
		ctx.Yield()
		resultCh <- nameserver.WhoIs(ctx, "train-controller")
		ctx.Shutdown(0)
	}

	k := microkernel.New(microkernel.DefaultConfig())
	require.NoError(t, k.Bootstrap(first))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := k.Run(ctx)
	require.NoError(t, err)

	tid := <-resultCh
	require.GreaterOrEqual(t, tid, int32(0))
}

func TestWhoIsUnknownName(t *testing.T) {
	resultCh := make(chan int32, 1)

	first := func(ctx *syscall.Context) {
		resultCh <- nameserver.WhoIs(ctx, "nonexistent")
		ctx.Shutdown(0)
	}

	k := microkernel.New(microkernel.DefaultConfig())
	require.NoError(t, k.Bootstrap(first))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := k.Run(ctx)
	require.NoError(t, err)
	require.EqualValues(t, -1, <-resultCh)
}
