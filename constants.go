package microkernel

import "github.com/ts7200/microkernel/internal/event"

// Re-export a handful of internal constants at the package root, the
// way the teacher surfaces its own internal constants package for its
// public API.
const (
	TickEventID        = event.TickEventID
	FreeRunningEventID = event.FreeRunningEventID
	UARTEventID        = event.UARTEventID
	AuxEventID         = event.AuxEventID
)
