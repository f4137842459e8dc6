package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Outcome classifies how a lifecycle ended for metrics purposes.
type Outcome string

const (
	// OutcomeExited marks a voluntary exit with code zero.
	OutcomeExited Outcome = "exited"

	// OutcomeFailed marks a voluntary exit with a non-zero code.
	OutcomeFailed Outcome = "failed"

	// OutcomeTerminated marks a forced termination by the owner.
	OutcomeTerminated Outcome = "terminated"

	// OutcomeTimeout marks a kill after the execution deadline.
	OutcomeTimeout Outcome = "timeout"
)

// Metrics is an in-memory lifecycle metrics collector. It complements the
// OpenTelemetry export path with a queryable snapshot for status surfaces.
type Metrics struct {
	nameStats     map[string]*NameStats
	totalSpawned  int64
	totalExited   int64
	totalFailed   int64
	terminated    int64
	timedOut      int64
	rejected      int64
	totalLifetime int64
	lifetimeCount int64
	minLifetime   int64
	maxLifetime   int64
	mu            sync.RWMutex
}

// NameStats contains per-command statistics.
type NameStats struct {
	LastSpawnAt   time.Time
	Name          string
	LastOutcome   string
	TotalSpawned  int64
	TotalExited   int64
	TotalFailed   int64
	TotalLifetime int64
	AvgLifetime   int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		nameStats:   make(map[string]*NameStats),
		minLifetime: -1,
	}
}

// RecordSpawn records a successful spawn.
func (m *Metrics) RecordSpawn(name string) {
	atomic.AddInt64(&m.totalSpawned, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.nameStats[name]
	if !ok {
		stats = &NameStats{Name: name}
		m.nameStats[name] = stats
	}
	stats.TotalSpawned++
	stats.LastSpawnAt = time.Now()
}

// RecordRejection records a spawn refused before any OS side effect.
func (m *Metrics) RecordRejection() {
	atomic.AddInt64(&m.rejected, 1)
}

// RecordEnd records the end of a process lifecycle.
func (m *Metrics) RecordEnd(name string, outcome Outcome, lifetime time.Duration) {
	switch outcome {
	case OutcomeExited:
		atomic.AddInt64(&m.totalExited, 1)
	case OutcomeFailed:
		atomic.AddInt64(&m.totalFailed, 1)
	case OutcomeTerminated:
		atomic.AddInt64(&m.terminated, 1)
	case OutcomeTimeout:
		atomic.AddInt64(&m.timedOut, 1)
	}

	ns := lifetime.Nanoseconds()
	atomic.AddInt64(&m.totalLifetime, ns)
	atomic.AddInt64(&m.lifetimeCount, 1)

	for {
		old := atomic.LoadInt64(&m.minLifetime)
		if old >= 0 && ns >= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.minLifetime, old, ns) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&m.maxLifetime)
		if ns <= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.maxLifetime, old, ns) {
			break
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.nameStats[name]
	if !ok {
		stats = &NameStats{Name: name}
		m.nameStats[name] = stats
	}
	stats.LastOutcome = string(outcome)
	stats.TotalLifetime += ns
	if outcome == OutcomeExited {
		stats.TotalExited++
	} else {
		stats.TotalFailed++
	}
	done := stats.TotalExited + stats.TotalFailed
	if done > 0 {
		stats.AvgLifetime = stats.TotalLifetime / done
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	NameStats    map[string]*NameStats
	TotalSpawned int64
	TotalExited  int64
	TotalFailed  int64
	Terminated   int64
	TimedOut     int64
	Rejected     int64
	AvgLifetime  time.Duration
	MinLifetime  time.Duration
	MaxLifetime  time.Duration
}

// SuccessRate returns the clean-exit rate as a percentage.
func (s MetricsSnapshot) SuccessRate() float64 {
	done := s.TotalExited + s.TotalFailed + s.Terminated + s.TimedOut
	if done == 0 {
		return 0
	}
	return float64(s.TotalExited) / float64(done) * 100
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalSpawned: atomic.LoadInt64(&m.totalSpawned),
		TotalExited:  atomic.LoadInt64(&m.totalExited),
		TotalFailed:  atomic.LoadInt64(&m.totalFailed),
		Terminated:   atomic.LoadInt64(&m.terminated),
		TimedOut:     atomic.LoadInt64(&m.timedOut),
		Rejected:     atomic.LoadInt64(&m.rejected),
		AvgLifetime:  m.avgLifetime(),
		MinLifetime:  time.Duration(atomic.LoadInt64(&m.minLifetime)),
		MaxLifetime:  time.Duration(atomic.LoadInt64(&m.maxLifetime)),
		NameStats:    m.getNameStats(),
	}
}

func (m *Metrics) avgLifetime() time.Duration {
	count := atomic.LoadInt64(&m.lifetimeCount)
	if count == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.totalLifetime) / count)
}

func (m *Metrics) getNameStats() map[string]*NameStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*NameStats, len(m.nameStats))
	for k, v := range m.nameStats {
		copied := *v
		result[k] = &copied
	}
	return result
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.totalSpawned, 0)
	atomic.StoreInt64(&m.totalExited, 0)
	atomic.StoreInt64(&m.totalFailed, 0)
	atomic.StoreInt64(&m.terminated, 0)
	atomic.StoreInt64(&m.timedOut, 0)
	atomic.StoreInt64(&m.rejected, 0)
	atomic.StoreInt64(&m.totalLifetime, 0)
	atomic.StoreInt64(&m.lifetimeCount, 0)
	atomic.StoreInt64(&m.minLifetime, -1)
	atomic.StoreInt64(&m.maxLifetime, 0)

	m.mu.Lock()
	m.nameStats = make(map[string]*NameStats)
	m.mu.Unlock()
}
