package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CaptureMetrics contains the Prometheus metrics for the capture pipeline.
// A nil *CaptureMetrics is valid and records nothing.
type CaptureMetrics struct {
	Captures       *prometheus.CounterVec
	CaptureLatency prometheus.Histogram
	RecordsListed  prometheus.Gauge
}

// NewCaptureMetrics creates the capture metrics and registers them on registry.
func NewCaptureMetrics(registry prometheus.Registerer) (*CaptureMetrics, error) {
	m := &CaptureMetrics{
		Captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "location_captures_total",
			Help: "Total number of capture attempts by outcome",
		}, []string{"outcome"}),
		CaptureLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "location_capture_duration_seconds",
			Help:    "End-to-end duration of capture attempts in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		RecordsListed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "location_records_listed",
			Help: "Number of records returned by the most recent list",
		}),
	}

	collectors := []prometheus.Collector{m.Captures, m.CaptureLatency, m.RecordsListed}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register capture metrics: %w", err)
		}
	}

	return m, nil
}

// ObserveCapture records one finished attempt. outcome is "done" or a failure reason.
func (m *CaptureMetrics) ObserveCapture(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.Captures.WithLabelValues(outcome).Inc()
	m.CaptureLatency.Observe(dur.Seconds())
}

// ObserveRejected counts an attempt turned away before it started.
// No duration is recorded for it.
func (m *CaptureMetrics) ObserveRejected(outcome string) {
	if m == nil {
		return
	}
	m.Captures.WithLabelValues(outcome).Inc()
}

// ObserveList records the size of a listed snapshot.
func (m *CaptureMetrics) ObserveList(n int) {
	if m == nil {
		return
	}
	m.RecordsListed.Set(float64(n))
}
