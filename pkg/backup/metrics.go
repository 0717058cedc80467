package backup

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks backup throughput and outcome, namespaced dbrt_backup_ the
// way the dispatcher and query result table namespace their own.
type Metrics struct {
	VolumesTotal   *prometheus.CounterVec
	BytesWritten   prometheus.Counter
	SessionsActive prometheus.Gauge
	Duration       *prometheus.HistogramVec
}

// NewMetrics creates backup metrics and registers them against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VolumesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbrt_backup_volumes_total",
				Help: "Total backup volumes transferred, by kind (data, log) and status",
			},
			[]string{"kind", "status"},
		),
		BytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dbrt_backup_bytes_written_total",
				Help: "Total page bytes written to the local backup destination",
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dbrt_backup_sessions_active",
				Help: "Number of backup sessions currently streaming volumes",
			},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbrt_backup_duration_seconds",
				Help:    "Wall-clock duration of a completed backup session",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.VolumesTotal, m.BytesWritten, m.SessionsActive, m.Duration)
	return m
}

// NullMetrics returns nil, usable wherever a *Metrics is optional.
func NullMetrics() *Metrics { return nil }

func (m *Metrics) recordVolume(kind, status string) {
	if m == nil {
		return
	}
	m.VolumesTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) recordBytes(n int) {
	if m == nil {
		return
	}
	m.BytesWritten.Add(float64(n))
}

func (m *Metrics) sessionStarted() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) sessionEnded(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
	m.Duration.WithLabelValues(status).Observe(durationSeconds)
}
