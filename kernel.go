// Package microkernel is the CORE of a small preemptive microkernel:
// task table, priority-preemptive scheduler, synchronous Send/Receive/
// Reply IPC, and the AwaitEvent interrupt bridge. It schedules user
// tasks and mediates their communication; everything a caller runs
// under it (servers, drivers, demo programs) is an external client.
package microkernel

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ts7200/microkernel/internal/event"
	"github.com/ts7200/microkernel/internal/interfaces"
	"github.com/ts7200/microkernel/internal/logging"
	"github.com/ts7200/microkernel/internal/nameserver"
	"github.com/ts7200/microkernel/internal/sched"
	"github.com/ts7200/microkernel/internal/srr"
	"github.com/ts7200/microkernel/internal/syscall"
	"github.com/ts7200/microkernel/internal/task"
)

// FirstUserTaskTid is the reserved id for the first task bootstrap
// creates after the name server (spec §3: "the first user task has id 2").
const FirstUserTaskTid task.Tid = 2

// idlePriority is the unique reserved priority for the idle task
// (spec §3: "idle task uses the unique reserved value -1").
const idlePriority = -1

// Kernel wires together the task table, ready queue, SRR engine, event
// bridge, and syscall dispatcher, and runs the single-threaded main
// loop described in spec §4.3 ("schedule -> activate -> loop").
type Kernel struct {
	config Config

	table  *task.Table
	sched  *sched.Scheduler
	srr    *srr.Engine
	events *event.Bridge
	disp   *syscall.Dispatcher

	syscalls chan syscall.Request
	irqs     chan irqEvent
	shutdown chan int

	source   interfaces.Source
	idle     *idleAccountant
	metrics  *Metrics
	observer interfaces.Observer

	idleTid task.Tid
}

type irqEvent struct {
	eventID int
	payload int32
}

// New constructs a Kernel from config but does not start it — call
// Bootstrap then Run.
func New(config Config) *Kernel {
	if config.TaskTableCapacity <= 0 {
		config = DefaultConfig()
	}
	idleTid := task.Tid(config.TaskTableCapacity - 1)
	tb := task.NewTable(config.TaskTableCapacity)
	sc := sched.New(config.TaskTableCapacity, idleTid)
	se := srr.New(tb, sc)
	ev := event.New(tb, sc, config.EventMapCapacity, config.AllowedEventIDs)

	idle := newIdleAccountant()
	metrics := NewMetrics()

	k := &Kernel{
		config:   config,
		table:    tb,
		sched:    sc,
		srr:      se,
		events:   ev,
		syscalls: make(chan syscall.Request, config.TaskTableCapacity),
		irqs:     make(chan irqEvent, 16),
		shutdown: make(chan int, 1),
		idle:     idle,
		metrics:  metrics,
		observer: NewMetricsObserver(metrics, idle),
		idleTid:  idleTid,
	}
	k.disp = syscall.NewDispatcher(tb, sc, se, ev, k.syscalls, k.perfSnapshot, k.requestShutdown)
	k.disp.SetMetricsRecorder(k.metrics.RecordSyscall)
	return k
}

// Metrics returns the kernel's live operational counters (task
// lifecycle, IPC traffic, syscall dispatch latency), safe to read
// while the kernel is running.
func (k *Kernel) Metrics() MetricsSnapshot {
	return k.metrics.Snapshot()
}

func (k *Kernel) requestShutdown(status int) {
	select {
	case k.shutdown <- status:
	default:
	}
}

func (k *Kernel) perfSnapshot(task.Tid) syscall.PerfStats {
	return syscall.PerfStats{
		IdleTimePct:   k.idle.idlePercent(),
		SinceLastCall: k.idle.sinceLast().Nanoseconds(),
	}
}

// spawnRoot installs a task directly at a reserved Tid using the
// dispatcher's own goroutine wrapper, bypassing the syscall channel
// (bootstrap runs before the main loop exists to service it).
func (k *Kernel) spawnRoot(tid task.Tid, priority int, entryFn func(*syscall.Context)) error {
	_, err := k.table.CreateForced(tid, priority, task.NoTid, entryFn, func(assigned task.Tid) func() {
		return k.disp.Spawn(assigned, entryFn)
	})
	return err
}

// Bootstrap creates the idle task, the name server, and the caller's
// first user task, in the order spec §6.3 describes, and activates
// none of them yet — Run's main loop does that.
func (k *Kernel) Bootstrap(firstUserTask func(*syscall.Context)) error {
	if err := k.spawnRoot(k.idleTid, idlePriority, idleTaskBody); err != nil {
		return fmt.Errorf("bootstrap idle: %w", err)
	}
	k.sched.Push(k.idleTid, idlePriority)

	if err := k.spawnRoot(nameserver.Tid, 0, nameserver.Task); err != nil {
		return fmt.Errorf("bootstrap name server: %w", err)
	}
	k.sched.Push(nameserver.Tid, 0)

	if err := k.spawnRoot(FirstUserTaskTid, 0, firstUserTask); err != nil {
		return fmt.Errorf("bootstrap first user task: %w", err)
	}
	k.sched.Push(FirstUserTaskTid, 0)

	if k.config.Source != nil {
		k.source = k.config.Source
	}
	logging.Infof("kernel bootstrap complete: idle=%d nameserver=%d first_user=%d", k.idleTid, nameserver.Tid, FirstUserTaskTid)
	return nil
}

// Run starts the interrupt-source pump (if one was configured) and
// the single dispatcher goroutine's main loop, returning when the
// terminal condition is reached (spec §4.3) or ctx is cancelled.
func (k *Kernel) Run(ctx context.Context) (int, error) {
	group, gctx := errgroup.WithContext(ctx)

	if k.source != nil {
		group.Go(func() error { return k.pumpInterrupts(gctx) })
	}

	status := 0
	group.Go(func() error {
		var err error
		status, err = k.mainLoop(gctx)
		k.metrics.Stop()
		if k.source != nil {
			k.source.Close()
		}
		return err
	})

	err := group.Wait()
	return status, err
}

// pumpInterrupts translates the configured interrupt Source into the
// kernel's internal irqs channel, decoupling the dispatcher's select
// loop from whatever backend (real timerfd/giouring, or the portable
// ticker stub) is in use.
func (k *Kernel) pumpInterrupts(ctx context.Context) error {
	for {
		id, payload, ok := k.source.Wait()
		if !ok {
			return nil
		}
		select {
		case k.irqs <- irqEvent{eventID: id, payload: payload}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// mainLoop is spec §4.3's "schedule -> activate -> loop", realized as:
// pop the highest-priority ready task, signal its resume channel, then
// wait for either its own next syscall or an asynchronous interrupt.
// Interrupts never stop the currently activated task's goroutine (Go
// has no mechanism to preempt it mid-computation); they are processed
// as soon as they arrive and may wake some other, unrelated task, but
// the loop only advances to the next schedule() once the *activated*
// task itself traps.
func (k *Kernel) mainLoop(ctx context.Context) (int, error) {
	for {
		select {
		case status := <-k.shutdown:
			logging.Infof("kernel: explicit shutdown requested, status=%d", status)
			return status, nil
		case <-ctx.Done():
			return -1, ctx.Err()
		default:
		}

		tid, ok := k.sched.Schedule()
		if !ok {
			panic("kernel: ready queue empty (idle task missing)")
		}
		if k.sched.IsIdle(tid) && k.events.NumWaiting() == 0 {
			logging.Infof("kernel: only idle runnable, no event waiters, shutting down")
			return 0, nil
		}

		runStart := time.Now()
		k.activate(tid)

		for {
			select {
			case status := <-k.shutdown:
				return status, nil
			case req := <-k.syscalls:
				k.disp.Handle(req)
				if req.Tid == tid || req.Num == syscall.Exit {
					goto activatedTaskTrapped
				}
			case irq := <-k.irqs:
				k.events.Deliver(irq.eventID, irq.payload)
			case <-ctx.Done():
				return -1, ctx.Err()
			}
		}
	activatedTaskTrapped:
		elapsed := uint64(time.Since(runStart).Nanoseconds())
		if k.sched.IsIdle(tid) {
			k.observer.ObserveIdle(elapsed)
		} else {
			k.observer.ObserveBusy(elapsed)
		}
	}
}

// activate signals tid's goroutine to resume, the Go analogue of
// restoring its saved stack pointer (spec §4.3). The signal is only
// ever sent here, once schedule() has actually picked tid, never from
// WriteReturn — see task.Descriptor.Resume's doc comment.
func (k *Kernel) activate(tid task.Tid) {
	k.table.MustGet(tid).Resume <- struct{}{}
}

// idleTaskBody is the reserved idle task: it has nothing to do but
// yield forever, giving the scheduler a always-ready lowest-priority
// task to fall back to (spec §4.3: "idle runs only when no user task
// is runnable").
func idleTaskBody(ctx *syscall.Context) {
	for {
		ctx.Yield()
	}
}

var _ interfaces.Observer = (*idleAccountant)(nil)
