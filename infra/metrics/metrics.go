// Package metrics exposes the scheduler's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gator"

// Metrics groups the collectors recorded by the order service and the
// delivery broadcaster.
type Metrics struct {
	commands      *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	etaUpdates    prometheus.Counter
	delivered     prometheus.Counter
	activeOrders  prometheus.Gauge
	published     *prometheus.CounterVec
	commandTiming prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Count of commands executed, by kind.",
			},
			[]string{"kind"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_rejected_total",
				Help:      "Count of commands rejected by the scheduler, by kind.",
			},
			[]string{"kind"},
		),
		etaUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eta_updates_total",
			Help:      "Count of ETAs reassigned by cascades, cancellations and duration updates.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_delivered_total",
			Help:      "Count of orders delivered.",
		}),
		activeOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_orders",
			Help:      "Number of orders currently scheduled.",
		}),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "broadcaster",
				Name:      "published_total",
				Help:      "Count of outbox publish attempts, by result.",
			},
			[]string{"result"},
		),
		commandTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent executing a command.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.commands,
			m.rejected,
			m.etaUpdates,
			m.delivered,
			m.activeOrders,
			m.published,
			m.commandTiming,
		)
	}
	return m
}

func (m *Metrics) RecordCommand(kind string, seconds float64) {
	m.commands.WithLabelValues(kind).Inc()
	m.commandTiming.Observe(seconds)
}

func (m *Metrics) RecordRejected(kind string) {
	m.rejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordETAUpdates(n int) {
	m.etaUpdates.Add(float64(n))
}

func (m *Metrics) RecordDelivered(n int) {
	m.delivered.Add(float64(n))
}

func (m *Metrics) SetActiveOrders(n int) {
	m.activeOrders.Set(float64(n))
}

// RecordPublish counts one broadcaster attempt; ok selects the "acked" or
// "failed" label.
func (m *Metrics) RecordPublish(ok bool) {
	result := "failed"
	if ok {
		result = "acked"
	}
	m.published.WithLabelValues(result).Inc()
}

// Delivered exposes the delivery counter for inspection.
func (m *Metrics) Delivered() prometheus.Counter {
	return m.delivered
}

// Rejected exposes the rejection counter of one command kind.
func (m *Metrics) Rejected(kind string) prometheus.Counter {
	return m.rejected.WithLabelValues(kind)
}
