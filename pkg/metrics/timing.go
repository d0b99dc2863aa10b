// Package metrics provides request instrumentation for stk.
//
// Every API call records its latency under an endpoint name such as
// "GET /v1/locations/tree". Metrics are collected in memory with atomic
// operations and can be printed with `stk --timings`. Collection is enabled
// by default but can be disabled via STK_METRICS=0.
//
// Usage:
//
//	done := metrics.Timer(metrics.Endpoint("GET /v1/items"))
//	resp, err := client.Do(req)
//	done()
package metrics

import (
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("STK_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric tracks timing statistics for a named operation.
// All methods are thread-safe.
type TimingMetric struct {
	name    string
	count   int64
	errors  int64
	totalNs int64
	maxNs   int64
	minNs   int64 // 0 means not set
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record records a single timing measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()

	atomic.AddInt64(&m.count, 1)
	atomic.AddInt64(&m.totalNs, ns)

	for {
		old := atomic.LoadInt64(&m.maxNs)
		if ns <= old || atomic.CompareAndSwapInt64(&m.maxNs, old, ns) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&m.minNs)
		if old != 0 && ns >= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.minNs, old, ns) {
			break
		}
	}
}

// RecordError counts a failed call. The duration is recorded separately.
func (m *TimingMetric) RecordError() {
	if !Enabled() {
		return
	}
	atomic.AddInt64(&m.errors, 1)
}

// Name returns the metric name.
func (m *TimingMetric) Name() string {
	return m.name
}

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 {
	return atomic.LoadInt64(&m.count)
}

// Errors returns the number of failed calls.
func (m *TimingMetric) Errors() int64 {
	return atomic.LoadInt64(&m.errors)
}

// Stats returns all timing statistics at once.
func (m *TimingMetric) Stats() TimingStats {
	count := atomic.LoadInt64(&m.count)
	totalNs := atomic.LoadInt64(&m.totalNs)

	var avgNs int64
	if count > 0 {
		avgNs = totalNs / count
	}

	return TimingStats{
		Name:    m.name,
		Count:   count,
		Errors:  atomic.LoadInt64(&m.errors),
		TotalMs: float64(totalNs) / 1e6,
		AvgMs:   float64(avgNs) / 1e6,
		MaxMs:   float64(atomic.LoadInt64(&m.maxNs)) / 1e6,
		MinMs:   float64(atomic.LoadInt64(&m.minNs)) / 1e6,
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	atomic.StoreInt64(&m.count, 0)
	atomic.StoreInt64(&m.errors, 0)
	atomic.StoreInt64(&m.totalNs, 0)
	atomic.StoreInt64(&m.maxNs, 0)
	atomic.StoreInt64(&m.minNs, 0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	Errors  int64   `json:"errors"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records elapsed time when called.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

var endpoints sync.Map // name -> *TimingMetric

// Endpoint returns the metric for name, creating it on first use.
func Endpoint(name string) *TimingMetric {
	if m, ok := endpoints.Load(name); ok {
		return m.(*TimingMetric)
	}
	m, _ := endpoints.LoadOrStore(name, newTimingMetric(name))
	return m.(*TimingMetric)
}

// ResetAll resets every endpoint metric.
func ResetAll() {
	endpoints.Range(func(_, v any) bool {
		v.(*TimingMetric).Reset()
		return true
	})
}

// AllTimingStats returns stats for endpoints with data, sorted by name.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	endpoints.Range(func(_, v any) bool {
		m := v.(*TimingMetric)
		if m.Count() > 0 || m.Errors() > 0 {
			stats = append(stats, m.Stats())
		}
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}
