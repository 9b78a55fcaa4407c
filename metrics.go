package microkernel

import (
	"sync/atomic"
	"time"

	"github.com/ts7200/microkernel/internal/syscall"
)

// LatencyBuckets defines the syscall dispatch latency histogram
// buckets in nanoseconds, from 100ns to 10ms.
var LatencyBuckets = []uint64{
	100,
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
}

const numLatencyBuckets = 6

// Metrics tracks kernel-level operational statistics: task lifecycle,
// IPC traffic, and syscall dispatch latency. Adapted from the
// teacher's I/O op/byte counters to task/syscall counters, same
// atomic-counter-plus-Snapshot shape.
type Metrics struct {
	TasksCreated atomic.Uint64
	TasksExited  atomic.Uint64
	CreateErrors atomic.Uint64

	SendOps       atomic.Uint64
	SendErrors    atomic.Uint64
	ReceiveOps    atomic.Uint64
	ReplyOps      atomic.Uint64
	ReplyErrors   atomic.Uint64
	AwaitEventOps atomic.Uint64
	YieldOps      atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64

	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordSyscall records one dispatched syscall's dispatch latency (the
// time its Handle call took) and bumps the counter matching num.
func (m *Metrics) RecordSyscall(num syscall.Number, latencyNs uint64, success bool) {
	switch num {
	case syscall.Create:
		m.TasksCreated.Add(1)
		if !success {
			m.CreateErrors.Add(1)
		}
	case syscall.Exit:
		m.TasksExited.Add(1)
	case syscall.Send:
		m.SendOps.Add(1)
		if !success {
			m.SendErrors.Add(1)
		}
	case syscall.Receive:
		m.ReceiveOps.Add(1)
	case syscall.Reply:
		m.ReplyOps.Add(1)
		if !success {
			m.ReplyErrors.Add(1)
		}
	case syscall.AwaitEvent:
		m.AwaitEventOps.Add(1)
	case syscall.Yield:
		m.YieldOps.Add(1)
	}
	m.recordLatency(latencyNs)
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the kernel as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of Metrics.
type MetricsSnapshot struct {
	TasksCreated uint64
	TasksExited  uint64
	CreateErrors uint64

	SendOps       uint64
	SendErrors    uint64
	ReceiveOps    uint64
	ReplyOps      uint64
	ReplyErrors   uint64
	AwaitEventOps uint64
	YieldOps      uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyHistogram [numLatencyBuckets]uint64

	TotalOps uint64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		TasksCreated:  m.TasksCreated.Load(),
		TasksExited:   m.TasksExited.Load(),
		CreateErrors:  m.CreateErrors.Load(),
		SendOps:       m.SendOps.Load(),
		SendErrors:    m.SendErrors.Load(),
		ReceiveOps:    m.ReceiveOps.Load(),
		ReplyOps:      m.ReplyOps.Load(),
		ReplyErrors:   m.ReplyErrors.Load(),
		AwaitEventOps: m.AwaitEventOps.Load(),
		YieldOps:      m.YieldOps.Load(),
	}

	opCount := m.OpCount.Load()
	totalLatencyNs := m.TotalLatencyNs.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}
	snap.TotalOps = opCount

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	return snap
}

// Reset resets all metrics counters (useful for testing).
func (m *Metrics) Reset() {
	m.TasksCreated.Store(0)
	m.TasksExited.Store(0)
	m.CreateErrors.Store(0)
	m.SendOps.Store(0)
	m.SendErrors.Store(0)
	m.ReceiveOps.Store(0)
	m.ReplyOps.Store(0)
	m.ReplyErrors.Store(0)
	m.AwaitEventOps.Store(0)
	m.YieldOps.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// MetricsObserver is the interfaces.Observer a Kernel reports its
// idle/busy samples to. The samples go only to the kernel's idle
// accounting; Metrics has no idle/busy counters and records none of
// them. It does not itself observe syscalls; RecordSyscall is called
// directly from the dispatch path instead, since interfaces.Observer
// only carries idle/busy samples.
type MetricsObserver struct {
	metrics *Metrics
	idle    *idleAccountant
}

// NewMetricsObserver creates an observer that records idle/busy
// samples into the kernel's idle accounting; m is held but not
// written to by the observer.
func NewMetricsObserver(m *Metrics, idle *idleAccountant) *MetricsObserver {
	return &MetricsObserver{metrics: m, idle: idle}
}

func (o *MetricsObserver) ObserveIdle(durationNs uint64) { o.idle.observeIdle(durationNs) }
func (o *MetricsObserver) ObserveBusy(durationNs uint64) { o.idle.observeBusy(durationNs) }
