package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты прохода очистки ключей идемпотентности (label result).
const (
	CleanupOK      = "ok"
	CleanupError   = "error"
	CleanupPartial = "partial"
)

// IdempotencyMetrics содержит метрики очистки ключей идемпотентности.
type IdempotencyMetrics struct {
	sweeps      *prometheus.CounterVec
	deleted     prometheus.Counter
	lastDeleted prometheus.Gauge
}

func NewIdempotencyMetrics() *IdempotencyMetrics {
	return NewIdempotencyMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewIdempotencyMetricsWithRegisterer(registerer prometheus.Registerer) *IdempotencyMetrics {
	return &IdempotencyMetrics{
		sweeps: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fulfillment_idempotency_cleanup_runs_total",
			Help: "Idempotency key cleanup sweeps by result",
		}, []string{"result"}),
		deleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_idempotency_cleanup_deleted_total",
			Help: "Expired idempotency keys removed",
		}),
		lastDeleted: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fulfillment_idempotency_cleanup_last_deleted",
			Help: "Keys removed by the last cleanup sweep",
		}),
	}
}

// RecordSweep фиксирует итог прохода очистки.
func (m *IdempotencyMetrics) RecordSweep(result string, deleted int) {
	m.sweeps.WithLabelValues(result).Inc()
	m.deleted.Add(float64(deleted))
	m.lastDeleted.Set(float64(deleted))
}
