//go:build !giouring
// +build !giouring

package main

import (
	"time"

	"github.com/ts7200/microkernel/internal/event"
	"github.com/ts7200/microkernel/internal/interfaces"
)

func newInterruptSource(tickPeriod time.Duration) interfaces.Source {
	return event.NewStubSource(tickPeriod)
}
