package swarm

import (
	"math"
	"sync"
	"time"
)

// Monitor tracks performance metrics for one coordinator's lifetime:
// per-specialist call counts and durations, cache traffic, parallel batch
// counts and the overall run window. All methods are safe for concurrent use;
// everything else in the engine treats the collected metrics as read-only
// through Summary.
type Monitor struct {
	mu          sync.Mutex
	calls       map[string]int
	durations   map[string][]time.Duration
	cacheHits   int
	cacheMisses int
	batches     int
	start       time.Time
	end         time.Time
}

// NewMonitor creates an empty monitor. Monitors are constructed per
// coordinator and injected, never shared process-wide.
func NewMonitor() *Monitor {
	return &Monitor{
		calls:     make(map[string]int),
		durations: make(map[string][]time.Duration),
	}
}

// StartTimer marks the beginning of the overall run window.
func (m *Monitor) StartTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = time.Now()
	m.end = time.Time{}
}

// EndTimer marks the end of the overall run window.
func (m *Monitor) EndTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.end = time.Now()
}

// RecordCall records one real (non-cached) specialist invocation.
func (m *Monitor) RecordCall(specialist string, dur time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[specialist]++
	m.durations[specialist] = append(m.durations[specialist], dur)
}

// RecordCacheHit counts a lookup satisfied from the cache.
func (m *Monitor) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// RecordCacheMiss counts a lookup that required a real invocation.
func (m *Monitor) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// RecordParallelBatch counts one parallel tool-execution batch.
func (m *Monitor) RecordParallelBatch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
}

// CallCount returns the number of real invocations recorded for a specialist.
func (m *Monitor) CallCount(specialist string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[specialist]
}

// SpecialistStats summarizes recorded invocations for one specialist.
type SpecialistStats struct {
	Calls        int     `json:"calls"`
	AvgSeconds   float64 `json:"avg_time_seconds"`
	TotalSeconds float64 `json:"total_time_seconds"`
}

// CacheStats summarizes cache traffic for the run.
type CacheStats struct {
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Summary is the read-only metrics snapshot attached to draft metadata.
type Summary struct {
	TotalSeconds    float64                    `json:"total_execution_time_seconds"`
	ParallelBatches int                        `json:"parallel_batches_executed"`
	Specialists     map[string]SpecialistStats `json:"specialist_statistics"`
	Cache           CacheStats                 `json:"cache_statistics"`
}

// Summary produces a snapshot of all recorded metrics. Durations are rounded
// to two decimals to keep the serialized metadata compact.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	if !m.start.IsZero() && !m.end.IsZero() {
		total = m.end.Sub(m.start).Seconds()
	}

	s := Summary{
		TotalSeconds:    round2(total),
		ParallelBatches: m.batches,
		Specialists:     make(map[string]SpecialistStats, len(m.calls)),
	}

	lookups := m.cacheHits + m.cacheMisses
	s.Cache = CacheStats{Hits: m.cacheHits, Misses: m.cacheMisses}
	if lookups > 0 {
		s.Cache.HitRate = round2(float64(m.cacheHits) / float64(lookups) * 100)
	}

	for name, calls := range m.calls {
		var sum time.Duration
		for _, d := range m.durations[name] {
			sum += d
		}
		stats := SpecialistStats{Calls: calls, TotalSeconds: round2(sum.Seconds())}
		if calls > 0 {
			stats.AvgSeconds = round2(sum.Seconds() / float64(calls))
		}
		s.Specialists[name] = stats
	}
	return s
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
