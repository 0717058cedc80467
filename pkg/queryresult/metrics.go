package queryresult

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the table's live entry count, the one property the spec's
// single-threaded-table policy still wants observable from outside.
type Metrics struct {
	LiveEntries prometheus.Gauge
}

// NewMetrics registers the queryresult gauge against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LiveEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dbrt_queryresult_live_entries",
			Help: "Number of currently allocated query result table entries.",
		}),
	}
	reg.MustRegister(m.LiveEntries)
	return m
}

// NullMetrics returns nil, usable wherever a *Metrics is optional.
func NullMetrics() *Metrics { return nil }
