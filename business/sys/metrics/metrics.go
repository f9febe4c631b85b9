// Package metrics constructs the metrics the node reports for its web api
// and for the chain it maintains.
package metrics

import (
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "powledger"

// Metrics holds the set of collectors the node updates.
type Metrics struct {
	Requests   prometheus.Counter
	Errors     prometheus.Counter
	Panics     prometheus.Counter
	Goroutines prometheus.Gauge

	blocksCreated prometheus.Counter
	blocksMined   prometheus.Counter
	miningStopped *prometheus.CounterVec
	attempts      prometheus.Counter
	height        prometheus.Gauge
	mineSeconds   prometheus.Histogram
}

// New constructs the collectors and registers them with the registry.
func New(reg prometheus.Registerer) *Metrics {
	m := Metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of web requests handled.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of web requests that returned an error.",
		}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Number of web requests that panicked.",
		}),
		Goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handler_goroutines",
			Help:      "Number of goroutines seen at the last sampled request.",
		}),
		blocksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "blocks_created_total",
			Help:      "Number of blocks appended to the chain.",
		}),
		blocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "blocks_mined_total",
			Help:      "Number of blocks a nonce was found for.",
		}),
		miningStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "mining_stopped_total",
			Help:      "Number of searches that ended without a nonce.",
		}, []string{"reason"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "mining_attempts_total",
			Help:      "Number of nonces tried by finished searches.",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "height",
			Help:      "Index of the latest block.",
		}),
		mineSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "mining_duration_seconds",
			Help:      "Time taken to find a nonce.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.Errors,
		m.Panics,
		m.Goroutines,
		m.blocksCreated,
		m.blocksMined,
		m.miningStopped,
		m.attempts,
		m.height,
		m.mineSeconds,
		collectors.NewGoCollector(),
	)

	return &m
}

// Observe updates the chain collectors from a chain event.
func (m *Metrics) Observe(ev chain.Event) {
	switch ev.Kind {
	case chain.EventBlockCreated:
		m.blocksCreated.Inc()
		m.height.Set(float64(ev.Index))

	case chain.EventBlockMined:
		m.blocksMined.Inc()
		m.attempts.Add(float64(ev.Attempts))
		m.mineSeconds.Observe(ev.Duration.Seconds())

	case chain.EventMiningStopped:
		m.miningStopped.WithLabelValues(reason(ev)).Inc()
		m.attempts.Add(float64(ev.Attempts))
	}
}

// reason classifies why a search ended without a nonce.
func reason(ev chain.Event) string {
	switch {
	case errors.Is(ev.Err, pow.ErrTimeout):
		return "timeout"
	case errors.Is(ev.Err, pow.ErrCancelled):
		return "cancelled"
	}
	return "error"
}
