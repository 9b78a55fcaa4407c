//go:build giouring
// +build giouring

package event

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/ts7200/microkernel/internal/interfaces"
)

// RealSource multiplexes the three hardware interrupt sources this
// kernel depends on through one io_uring instance, the same shape as
// the data-plane queue's single pinned completion loop: a timerfd for
// the 10ms periodic tick, a second timerfd standing in for the
// free-running down-counter, and a pipe2 pair standing in for the
// UART's rx/tx/modem-status line. Built only with -tags giouring; the
// portable default is StubSource.
type RealSource struct {
	ring *giouring.Ring

	tickFd     int
	freeFd     int
	uartReadFd int
	uartWriteFd int

	logger interfaces.Logger

	events chan rawEvent
	done   chan struct{}
	once   sync.Once
}

// fd poll slots, encoded as SQE user data so completions can be routed
// back to the right event id without a second lookup table.
const (
	slotTick = iota
	slotFree
	slotUART
)

var slotEventID = map[uint64]int{
	slotTick: TickEventID,
	slotFree: FreeRunningEventID,
	slotUART: UARTEventID,
}

// NewRealSource creates the timerfds, the UART stand-in pipe, and the
// ring that polls all three, then starts the pinned completion loop.
func NewRealSource(logger interfaces.Logger) (*RealSource, error) {
	ring, err := giouring.CreateRing(32)
	if err != nil {
		return nil, fmt.Errorf("create ring: %w", err)
	}

	tickFd, err := newPeriodicTimerfd(tickPeriodNs)
	if err != nil {
		ring.QueueExit()
		return nil, fmt.Errorf("tick timerfd: %w", err)
	}
	freeFd, err := newPeriodicTimerfd(freeRunningPeriodNs)
	if err != nil {
		unix.Close(tickFd)
		ring.QueueExit()
		return nil, fmt.Errorf("free-running timerfd: %w", err)
	}
	fds, err := unix.Pipe2(unix.O_NONBLOCK)
	if err != nil {
		unix.Close(tickFd)
		unix.Close(freeFd)
		ring.QueueExit()
		return nil, fmt.Errorf("uart pipe: %w", err)
	}

	s := &RealSource{
		ring:        ring,
		tickFd:      tickFd,
		freeFd:      freeFd,
		uartReadFd:  fds[0],
		uartWriteFd: fds[1],
		logger:      logger,
		events:      make(chan rawEvent, 16),
		done:        make(chan struct{}),
	}

	started := make(chan error, 1)
	go s.ioLoop(started)
	if err := <-started; err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

const (
	tickPeriodNs        = 10_000_000  // 10ms
	freeRunningPeriodNs = 1_000_000   // 1ms, the free-running counter's tick
)

func newPeriodicTimerfd(periodNs int64) (int, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return -1, err
	}
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(periodNs),
		Value:    unix.NsecToTimespec(periodNs),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// WriteUART injects a byte into the simulated UART rx line, waking a
// task AwaitEvent-ing on UARTEventID.
func (s *RealSource) WriteUART(b byte) error {
	_, err := unix.Write(s.uartWriteFd, []byte{b})
	return err
}

func (s *RealSource) armPoll(slot uint64, fd int) error {
	sqe := s.ring.GetSQE()
	if sqe == nil {
		if _, err := s.ring.Submit(); err != nil {
			return err
		}
		sqe = s.ring.GetSQE()
		if sqe == nil {
			return fmt.Errorf("event: submission queue full")
		}
	}
	sqe.PrepPollAdd(int32(fd), unix.POLLIN)
	sqe.UserData = slot
	return nil
}

// ioLoop is the pinned single goroutine that owns the ring, mirroring
// the data-plane runner's thread-affinity requirement: one thread, one
// ring, no concurrent access.
func (s *RealSource) ioLoop(started chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for slot, fd := range map[uint64]int{slotTick: s.tickFd, slotFree: s.freeFd, slotUART: s.uartReadFd} {
		if err := s.armPoll(slot, fd); err != nil {
			started <- err
			return
		}
	}
	if _, err := s.ring.Submit(); err != nil {
		started <- fmt.Errorf("initial submit: %w", err)
		return
	}
	started <- nil

	for {
		select {
		case <-s.done:
			return
		default:
		}

		cqe, err := s.ring.WaitCQE()
		if err != nil {
			if s.logger != nil {
				s.logger.Debugf("event: wait cqe: %v", err)
			}
			continue
		}
		slot := cqe.UserData
		fd := s.fdForSlot(slot)
		s.ring.CQESeen(cqe)

		payload, ok := s.drain(slot, fd)
		if ok {
			select {
			case s.events <- rawEvent{id: slotEventID[slot], payload: payload}:
			case <-s.done:
				return
			}
		}
		if err := s.armPoll(slot, fd); err != nil {
			if s.logger != nil {
				s.logger.Debugf("event: re-arm poll: %v", err)
			}
			return
		}
		if _, err := s.ring.Submit(); err != nil {
			if s.logger != nil {
				s.logger.Debugf("event: submit: %v", err)
			}
			return
		}
	}
}

func (s *RealSource) fdForSlot(slot uint64) int {
	switch slot {
	case slotTick:
		return s.tickFd
	case slotFree:
		return s.freeFd
	default:
		return s.uartReadFd
	}
}

// drain acknowledges the readable bytes a poll completion announced
// and computes the payload the waiter receives: a fixed 0 for timer
// events (tick, free-running), the interrupt-status byte for UART.
func (s *RealSource) drain(slot uint64, fd int) (int32, bool) {
	if slot == slotUART {
		buf := make([]byte, 1)
		n, err := unix.Read(fd, buf)
		if err != nil || n == 0 {
			return 0, false
		}
		return int32(buf[0]), true
	}
	buf := make([]byte, 8)
	n, err := unix.Read(fd, buf)
	if err != nil || n != 8 {
		return 0, false
	}
	return 0, true
}

func (s *RealSource) Wait() (int, int32, bool) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return 0, 0, false
		}
		return ev.id, ev.payload, true
	case <-s.done:
		return 0, 0, false
	}
}

func (s *RealSource) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.ring.QueueExit()
		unix.Close(s.tickFd)
		unix.Close(s.freeFd)
		unix.Close(s.uartReadFd)
		unix.Close(s.uartWriteFd)
	})
	return nil
}
