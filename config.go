package microkernel

import (
	"time"

	"github.com/ts7200/microkernel/internal/event"
	"github.com/ts7200/microkernel/internal/interfaces"
)

// Config holds the kernel's build-time configuration, the Go analogue
// of the constants the original fixes at compile time (task table
// capacity, event map size, the allowed event-id list, tick period)
// plus the interrupt source to use; there is no stack size setting,
// since task stacks are goroutine stacks — teacher's
// Config/DefaultConfig pattern from internal/logging and
// ctrl.DeviceParams.
type Config struct {
	// TaskTableCapacity bounds the number of live tasks (spec §3: "e.g. 48").
	TaskTableCapacity int

	// EventMapCapacity bounds the event id range AwaitEvent accepts
	// into (spec §3: "e.g. 64").
	EventMapCapacity int

	// AllowedEventIDs is the fixed allow-list AwaitEvent validates
	// against (spec §4.5).
	AllowedEventIDs []int

	// TickPeriod is the portable stub backend's periodic-tick interval
	// (spec §3: "a 10 ms periodic tick"). Ignored by the real backend,
	// which derives its timerfd period from the event package's
	// tickPeriodNs constant instead.
	TickPeriod time.Duration

	// Source is the interrupt bridge backend. If nil, Run does not
	// start an interrupt pump at all (useful for tests driving
	// AwaitEvent/Deliver directly).
	Source interfaces.Source
}

// DefaultTaskTableCapacity matches spec §3's example build-time constant.
const DefaultTaskTableCapacity = 48

// DefaultEventMapCapacity matches spec §3's example build-time constant.
const DefaultEventMapCapacity = 64

// DefaultConfig returns sane defaults with no interrupt source wired
// in; callers that want real or simulated interrupts set Config.Source
// explicitly (event.NewStubSource or, with -tags giouring,
// event.NewRealSource).
func DefaultConfig() Config {
	return Config{
		TaskTableCapacity: DefaultTaskTableCapacity,
		EventMapCapacity:  DefaultEventMapCapacity,
		AllowedEventIDs:   event.DefaultAllowList,
		TickPeriod:        10 * time.Millisecond,
	}
}
