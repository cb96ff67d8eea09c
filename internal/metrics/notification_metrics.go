package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты уведомления (label result).
const (
	NotificationSent     = "sent"
	NotificationSkipped  = "skipped"
	NotificationFailed   = "failed"
	NotificationDropped  = "dropped"
	NotificationDetached = "detached"
)

// NotificationMetrics содержит метрики уведомлений покупателей.
type NotificationMetrics struct {
	results    *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

// NewNotificationMetrics создаёт метрики в DefaultRegisterer.
func NewNotificationMetrics() *NotificationMetrics {
	return NewNotificationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewNotificationMetricsWithRegisterer создаёт метрики в заданном реестре.
func NewNotificationMetricsWithRegisterer(registerer prometheus.Registerer) *NotificationMetrics {
	return &NotificationMetrics{
		results: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fulfillment_notifications_total",
			Help: "Total number of shipment notifications by result",
		}, []string{"result"}),
		queueDepth: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fulfillment_notification_queue_depth",
			Help: "Number of notifications waiting in the dispatcher queue",
		}),
	}
}

// RecordResult увеличивает счётчик результата уведомления.
func (m *NotificationMetrics) RecordResult(result string) {
	m.results.WithLabelValues(result).Inc()
}

// SetQueueDepth выставляет текущую длину очереди.
func (m *NotificationMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}
