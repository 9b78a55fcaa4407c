//go:build giouring
// +build giouring

package main

import (
	"time"

	"github.com/ts7200/microkernel/internal/event"
	"github.com/ts7200/microkernel/internal/interfaces"
	"github.com/ts7200/microkernel/internal/logging"
)

func newInterruptSource(_ time.Duration) interfaces.Source {
	src, err := event.NewRealSource(logging.Default())
	if err != nil {
		logging.Default().Errorf("real interrupt source unavailable, falling back to stub: %v", err)
		return event.NewStubSource(10 * time.Millisecond)
	}
	return src
}
