package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors. A single instance is
// created at startup and shared by the pipeline, the scorer and the hub.
type Metrics struct {
	TransfersTotal    *prometheus.CounterVec
	TransferDuration  prometheus.Histogram
	FraudFlagsTotal   *prometheus.CounterVec
	StreamSubscribers prometheus.Gauge
	StreamDropped     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "banking",
			Name:      "transfers_total",
			Help:      "Finalized transfers by disposition.",
		}, []string{"status"}),
		TransferDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "banking",
			Name:      "transfer_duration_seconds",
			Help:      "End-to-end duration of the transfer pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),
		FraudFlagsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "banking",
			Name:      "fraud_flags_total",
			Help:      "Fraud rule hits by rule name.",
		}, []string{"rule"}),
		StreamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "banking",
			Name:      "stream_subscribers",
			Help:      "Currently attached transfer-stream subscribers.",
		}),
		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "banking",
			Name:      "stream_dropped_total",
			Help:      "Events dropped because a subscriber's buffer was full.",
		}),
	}

	reg.MustRegister(
		m.TransfersTotal,
		m.TransferDuration,
		m.FraudFlagsTotal,
		m.StreamSubscribers,
		m.StreamDropped,
	)
	return m
}
