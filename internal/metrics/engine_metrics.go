// Package metrics collects in-process performance counters and latency
// distributions for the recommendation engine and the scraping pipeline.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// EngineMetrics tracks performance metrics for companion operations.
type EngineMetrics struct {
	// Latency histograms (in milliseconds)
	RecommendLatency *Histogram
	FetchLatency     *Histogram

	// Counters (atomic operations for thread safety)
	Recommendations  atomic.Uint64
	CandidatesScored atomic.Uint64
	FetchRequests    atomic.Uint64
	FetchErrors      atomic.Uint64

	startTime time.Time
}

// NewEngineMetrics creates a new metrics collector.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		RecommendLatency: NewHistogram(10000),
		FetchLatency:     NewHistogram(10000),
		startTime:        time.Now(),
	}
}

// RecordRecommend records one scoring call: its duration and how many
// candidates were scored.
func (m *EngineMetrics) RecordRecommend(d time.Duration, candidates int) {
	m.RecommendLatency.Record(d)
	m.Recommendations.Add(1)
	m.CandidatesScored.Add(uint64(candidates))
}

// RecordFetch records one scraper page fetch.
func (m *EngineMetrics) RecordFetch(d time.Duration, err error) {
	m.FetchLatency.Record(d)
	m.FetchRequests.Add(1)
	if err != nil {
		m.FetchErrors.Add(1)
	}
}

// LatencyStats contains statistics for a latency histogram.
type LatencyStats struct {
	Mean  float64 `json:"mean"` // milliseconds
	P50   float64 `json:"p50"`  // median
	P95   float64 `json:"p95"`  // 95th percentile
	P99   float64 `json:"p99"`  // 99th percentile
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"` // number of samples
}

// EngineStats contains the computed statistics from metrics.
type EngineStats struct {
	RecommendLatency LatencyStats `json:"recommend_latency"`
	FetchLatency     LatencyStats `json:"fetch_latency"`

	Recommendations  uint64  `json:"recommendations"`
	CandidatesScored uint64  `json:"candidates_scored"`
	FetchRequests    uint64  `json:"fetch_requests"`
	FetchErrors      uint64  `json:"fetch_errors"`
	FetchSuccessRate float64 `json:"fetch_success_rate"` // percentage

	Uptime string `json:"uptime"` // human-readable uptime
}

// GetStats returns a snapshot of the current statistics.
func (m *EngineMetrics) GetStats() *EngineStats {
	fetchRequests := m.FetchRequests.Load()
	fetchErrors := m.FetchErrors.Load()

	fetchSuccessRate := 0.0
	if fetchRequests > 0 {
		fetchSuccessRate = (float64(fetchRequests-fetchErrors) / float64(fetchRequests)) * 100
	}

	return &EngineStats{
		RecommendLatency: latencyStats(m.RecommendLatency),
		FetchLatency:     latencyStats(m.FetchLatency),
		Recommendations:  m.Recommendations.Load(),
		CandidatesScored: m.CandidatesScored.Load(),
		FetchRequests:    fetchRequests,
		FetchErrors:      fetchErrors,
		FetchSuccessRate: fetchSuccessRate,
		Uptime:           formatUptime(time.Since(m.startTime)),
	}
}

// latencyStats computes summary statistics from a histogram.
func latencyStats(h *Histogram) LatencyStats {
	return LatencyStats{
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
		Min:   h.Min(),
		Max:   h.Max(),
		Count: h.Count(),
	}
}

// formatUptime formats a duration as a human-readable uptime string.
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
