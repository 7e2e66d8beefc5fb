package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	TransitionsTotal  *prometheus.CounterVec
	BulkRecordsTotal  *prometheus.CounterVec
	ProcessingTime    *prometheus.HistogramVec
	ErrorsCount       *prometheus.CounterVec
	OperationsByDelay *prometheus.GaugeVec
	PctLate           prometheus.Gauge
	RailByView        *prometheus.GaugeVec
}

// NewMetrics creates prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rail_transitions_total",
			Help:      "Rail pipeline transitions by action and result",
		}, []string{"action", "result"}),
		BulkRecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rail_bulk_records_total",
			Help:      "Records touched by bulk transitions by outcome",
		}, []string{"action", "outcome"}),
		ProcessingTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_time_seconds",
			Help:      "Time taken to compute dashboards and apply transitions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		OperationsByDelay: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operations",
			Help:      "Non-canceled operations by delay classification",
		}, []string{"status"}),
		PctLate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operations_late_percent",
			Help:      "Percentage of non-canceled operations running late",
		}),
		RailByView: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rail_operations",
			Help:      "Rail operations per list view",
		}, []string{"view"}),
	}
}
