package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа отгрузки (label reason).
const (
	ReasonValidation      = "validation"
	ReasonStockNotFound   = "stock_not_found"
	ReasonInsufficient    = "insufficient_stock"
	ReasonTxConflict      = "tx_conflict"
	ReasonOperatorMissing = "operator_missing"
	ReasonCanceled        = "canceled"
	ReasonInternal        = "internal"
)

// FulfillmentMetrics содержит метрики проведения отгрузок.
type FulfillmentMetrics struct {
	started   prometheus.Counter
	completed prometheus.Counter
	failed    *prometheus.CounterVec
	retries   prometheus.Counter

	duration prometheus.Histogram

	decrementedUnits prometheus.Counter
	deliveryLines    prometheus.Histogram

	inFlight prometheus.Gauge
}

// NewFulfillmentMetrics создаёт метрики в DefaultRegisterer.
func NewFulfillmentMetrics() *FulfillmentMetrics {
	return NewFulfillmentMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewFulfillmentMetricsWithRegisterer создаёт метрики в заданном реестре.
func NewFulfillmentMetricsWithRegisterer(registerer prometheus.Registerer) *FulfillmentMetrics {
	return &FulfillmentMetrics{
		started: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_deliveries_started_total",
			Help: "Total number of delivery fulfillments started",
		}),
		completed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_deliveries_completed_total",
			Help: "Total number of deliveries committed",
		}),
		failed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fulfillment_deliveries_failed_total",
			Help: "Total number of delivery fulfillments rejected or aborted",
		}, []string{"reason"}),
		retries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_tx_retries_total",
			Help: "Total number of delivery transactions retried after a storage conflict",
		}),
		duration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fulfillment_delivery_duration_seconds",
			Help:    "Duration of delivery fulfillment in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		decrementedUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_stock_units_decremented_total",
			Help: "Total number of stock units written off by committed deliveries",
		}),
		deliveryLines: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fulfillment_delivery_lines",
			Help:    "Number of lines per committed delivery",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fulfillment_deliveries_in_flight",
			Help: "Number of delivery fulfillments currently running",
		}),
	}
}

// RecordStarted увеличивает счётчик начатых отгрузок.
func (m *FulfillmentMetrics) RecordStarted() {
	m.started.Inc()
	m.inFlight.Inc()
}

// RecordFinished фиксирует окончание отгрузки независимо от результата.
func (m *FulfillmentMetrics) RecordFinished(duration time.Duration) {
	m.inFlight.Dec()
	m.duration.Observe(duration.Seconds())
}

// RecordCompleted фиксирует проведённую отгрузку.
func (m *FulfillmentMetrics) RecordCompleted(lines int, units int64) {
	m.completed.Inc()
	m.deliveryLines.Observe(float64(lines))
	m.decrementedUnits.Add(float64(units))
}

// RecordFailed увеличивает счётчик отказов по причине.
func (m *FulfillmentMetrics) RecordFailed(reason string) {
	m.failed.WithLabelValues(reason).Inc()
}

// RecordRetry увеличивает счётчик повторов транзакции.
func (m *FulfillmentMetrics) RecordRetry() {
	m.retries.Inc()
}
