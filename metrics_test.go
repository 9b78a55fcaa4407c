package microkernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ts7200/microkernel/internal/syscall"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	require.Zero(t, snap.TotalOps)

	m.RecordSyscall(syscall.Create, 1_000_000, true)
	m.RecordSyscall(syscall.Send, 2_000_000, true)
	m.RecordSyscall(syscall.Create, 500_000, false)

	snap = m.Snapshot()
	require.EqualValues(t, 2, snap.TasksCreated)
	require.EqualValues(t, 1, snap.CreateErrors)
	require.EqualValues(t, 1, snap.SendOps)
	require.Zero(t, snap.SendErrors)
	require.EqualValues(t, 3, snap.TotalOps)
}

func TestMetricsLatency(t *testing.T) {
	m := NewMetrics()

	m.RecordSyscall(syscall.Yield, 1_000_000, true)
	m.RecordSyscall(syscall.Yield, 2_000_000, true)

	snap := m.Snapshot()
	require.EqualValues(t, 1_500_000, snap.AvgLatencyNs)
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)
	snap := m.Snapshot()
	require.GreaterOrEqual(t, snap.UptimeNs, uint64(10*time.Millisecond))

	m.Stop()
	time.Sleep(5 * time.Millisecond)
	snap2 := m.Snapshot()
	require.LessOrEqual(t, snap2.UptimeNs, snap.UptimeNs+uint64(2*time.Millisecond))
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordSyscall(syscall.Create, 1_000_000, true)
	require.NotZero(t, m.Snapshot().TotalOps)

	m.Reset()
	require.Zero(t, m.Snapshot().TotalOps)
}

func TestMetricsObserverForwardsIdleBusy(t *testing.T) {
	m := NewMetrics()
	idle := newIdleAccountant()
	observer := NewMetricsObserver(m, idle)

	observer.ObserveIdle(1_000_000)
	observer.ObserveBusy(3_000_000)

	require.InDelta(t, 25.0, idle.idlePercent(), 0.01)
}

func TestMetricsHistogram(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.RecordSyscall(syscall.Receive, 500, true)
	}
	for i := 0; i < 49; i++ {
		m.RecordSyscall(syscall.Receive, 5_000_000, true)
	}
	m.RecordSyscall(syscall.Receive, 9_000_000_000, true)

	snap := m.Snapshot()
	require.EqualValues(t, 100, snap.TotalOps)

	var total uint64
	for _, v := range snap.LatencyHistogram {
		total += v
	}
	require.NotZero(t, total)
}
