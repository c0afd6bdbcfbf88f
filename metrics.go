package qsim

import (
	"slices"
	"sync"
	"time"
)

// mergeTally counts the InsertOrAccumulate outcomes of one application.
type mergeTally struct {
	emitted     int64
	inserted    int64
	accumulated int64
	cancelled   int64
	ignored     int64
}

func (t *mergeTally) add(m Merge) {
	t.emitted++

	switch m {
	case MergeInserted:
		t.inserted++
	case MergeAccumulated:
		t.accumulated++
	case MergeCancelled:
		t.cancelled++
	case MergeIgnored:
		t.ignored++
	}
}

/*
Metrics accumulates what an Engine did across every primitive gate it
applied. Composite gates are counted through their constituents.
*/
type Metrics struct {
	mu sync.RWMutex

	GatesApplied         int64
	ParallelApplications int64
	KetsEmitted          int64
	KetsInserted         int64
	KetsAccumulated      int64
	KetsCancelled        int64
	KetsIgnored          int64
	LastStateSize        int
	PeakStateSize        int

	TotalGateTime      time.Duration
	AverageGateLatency time.Duration
	P95GateLatency     time.Duration
	P99GateLatency     time.Duration

	// latencies is a ring of the most recent gate durations.
	latencies []time.Duration
	next      int
}

const latencyWindow = 1000

func NewMetrics() *Metrics {
	return &Metrics{
		latencies: make([]time.Duration, 0, latencyWindow),
	}
}

func (m *Metrics) recordApplication(startTime time.Time, tally mergeTally, size int, parallel bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.GatesApplied++
	if parallel {
		m.ParallelApplications++
	}

	m.KetsEmitted += tally.emitted
	m.KetsInserted += tally.inserted
	m.KetsAccumulated += tally.accumulated
	m.KetsCancelled += tally.cancelled
	m.KetsIgnored += tally.ignored

	m.LastStateSize = size
	if size > m.PeakStateSize {
		m.PeakStateSize = size
	}

	m.TotalGateTime += duration
	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageGateLatency = m.TotalGateTime / time.Duration(m.GatesApplied)

	if len(m.latencies) < latencyWindow {
		m.latencies = append(m.latencies, duration)
	} else {
		m.latencies[m.next] = duration
	}
	m.next = (m.next + 1) % latencyWindow

	sorted := slices.Clone(m.latencies)
	slices.Sort(sorted)

	m.P95GateLatency = percentile(sorted, 0.95)
	m.P99GateLatency = percentile(sorted, 0.99)
}

// percentile picks the nearest-rank entry of an ascending, non-empty slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	return sorted[min(int(float64(len(sorted))*p), len(sorted)-1)]
}

// ExportMetrics flattens the counters for logging or JSON output.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"gates_applied":         m.GatesApplied,
		"parallel_applications": m.ParallelApplications,
		"kets_emitted":          m.KetsEmitted,
		"kets_inserted":         m.KetsInserted,
		"kets_accumulated":      m.KetsAccumulated,
		"kets_cancelled":        m.KetsCancelled,
		"kets_ignored":          m.KetsIgnored,
		"last_state_size":       m.LastStateSize,
		"peak_state_size":       m.PeakStateSize,
		"avg_latency_us":        m.AverageGateLatency.Microseconds(),
		"p95_latency_us":        m.P95GateLatency.Microseconds(),
		"p99_latency_us":        m.P99GateLatency.Microseconds(),
	}
}
