package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы публикации события из outbox (label result).
const (
	OutboxSent      = "sent"
	OutboxRetried   = "retry"
	OutboxFailed    = "failed"
	OutboxDLQ       = "dlq"
	OutboxDLQFailed = "dlq_failed"
)

// OutboxMetrics содержит метрики ретранслятора outbox.
type OutboxMetrics struct {
	publishes  *prometheus.CounterVec
	pending    prometheus.Gauge
	oldestAge  prometheus.Gauge
	batchSizes prometheus.Histogram
}

// NewOutboxMetrics создаёт метрики в DefaultRegisterer.
func NewOutboxMetrics() *OutboxMetrics {
	return NewOutboxMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOutboxMetricsWithRegisterer создаёт метрики в заданном реестре.
func NewOutboxMetricsWithRegisterer(registerer prometheus.Registerer) *OutboxMetrics {
	return &OutboxMetrics{
		publishes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fulfillment_outbox_publish_attempts_total",
			Help: "Outbox publish attempts by result",
		}, []string{"result"}),
		pending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fulfillment_outbox_pending_records",
			Help: "Delivery events waiting in the outbox",
		}),
		oldestAge: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fulfillment_outbox_oldest_pending_age_seconds",
			Help: "Age of the oldest pending outbox event",
		}),
		batchSizes: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fulfillment_outbox_batch_size",
			Help:    "Events pulled from the outbox per polling cycle",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *OutboxMetrics) RecordPublish(result string) {
	m.publishes.WithLabelValues(result).Inc()
}

func (m *OutboxMetrics) ObserveBatch(size int) {
	m.batchSizes.Observe(float64(size))
}

// SetBacklog выставляет размер backlog и возраст самого старого события.
// Нулевой oldest или пустой backlog обнуляют возраст.
func (m *OutboxMetrics) SetBacklog(pending int, oldest time.Time, now time.Time) {
	m.pending.Set(float64(pending))
	if pending == 0 || oldest.IsZero() {
		m.oldestAge.Set(0)
		return
	}
	age := now.Sub(oldest).Seconds()
	if age < 0 {
		age = 0
	}
	m.oldestAge.Set(age)
}
