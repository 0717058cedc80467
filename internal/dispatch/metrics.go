package dispatch

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks dispatcher-specific Prometheus metrics, namespaced dbrt_
// the way the pack's protocol adapters namespace their own (nlm_, nsm_).
type Metrics struct {
	RoundTripsTotal   *prometheus.CounterVec
	RoundTripDuration *prometheus.HistogramVec
	BytesSent         prometheus.Counter
	BytesReceived     prometheus.Counter
}

// NewMetrics creates dispatcher metrics and registers them against reg.
// Panics if registration fails, expected only during initialization.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoundTripsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbrt_dispatch_round_trips_total",
				Help: "Total dispatch round trips by opcode and status",
			},
			[]string{"opcode", "status"},
		),
		RoundTripDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbrt_dispatch_round_trip_duration_seconds",
				Help:    "Dispatch round trip latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"opcode"},
		),
		BytesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dbrt_dispatch_bytes_sent_total",
				Help: "Total bytes sent across all dispatch calls",
			},
		),
		BytesReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dbrt_dispatch_bytes_received_total",
				Help: "Total bytes received across all dispatch calls",
			},
		),
	}

	reg.MustRegister(m.RoundTripsTotal, m.RoundTripDuration, m.BytesSent, m.BytesReceived)
	return m
}

// RecordRoundTrip records one completed dispatch call.
func (m *Metrics) RecordRoundTrip(opcode, status string, durationSeconds float64, reqBytes, replyBytes int) {
	if m == nil {
		return
	}
	m.RoundTripsTotal.WithLabelValues(opcode, status).Inc()
	m.RoundTripDuration.WithLabelValues(opcode).Observe(durationSeconds)
	m.BytesSent.Add(float64(reqBytes))
	m.BytesReceived.Add(float64(replyBytes))
}

// NullMetrics returns nil, which acts as a no-op metrics collector; every
// Metrics method tolerates a nil receiver.
func NullMetrics() *Metrics {
	return nil
}
