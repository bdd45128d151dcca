package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for a Store.
type Metrics struct {
	operations *prometheus.CounterVec
	writes     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	rosterSize prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_operations_total",
			Help: "Attendance store operations by name.",
		}, []string{"op"}),
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_persist_writes_total",
			Help: "Successful background writes by storage key.",
		}, []string{"key"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_persist_failures_total",
			Help: "Failed background writes by storage key.",
		}, []string{"key"}),
		rosterSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_roster_size",
			Help: "Number of children on the roster.",
		}),
	}
}

func (m *Metrics) observeOp(op string) {
	m.operations.WithLabelValues(op).Inc()
}

func (m *Metrics) observeWrite(key string, err error) {
	if err != nil {
		m.failures.WithLabelValues(key).Inc()
		return
	}
	m.writes.WithLabelValues(key).Inc()
}
