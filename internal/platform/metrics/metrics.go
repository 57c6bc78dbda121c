package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report to. Nop satisfies it for tests and
// for deployments with metrics disabled.
type Recorder interface {
	BidAccepted()
	BidRejected(reason string)
	Transition(from string, to string)
	TickFailed()
	TickDuration(d time.Duration)
}

type MetricsManager struct {
	Registry            *prometheus.Registry
	BidsAcceptedTotal   prometheus.Counter
	BidsRejectedTotal   *prometheus.CounterVec
	TransitionsTotal    *prometheus.CounterVec
	TickFailuresTotal   prometheus.Counter
	TickDurationSeconds prometheus.Histogram
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	bidsAccepted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_accepted_total",
		Help:      "Total number of accepted bids.",
	})
	bidsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_rejected_total",
		Help:      "Total number of rejected bids by reason.",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_transitions_total",
		Help:      "Auction status transitions applied by the lifecycle engine.",
	}, []string{"from", "to"})
	tickFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_tick_failures_total",
		Help:      "Per-auction write failures during lifecycle ticks.",
	})
	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lifecycle_tick_duration_seconds",
		Help:      "Duration of a lifecycle tick.",
		Buckets:   prometheus.DefBuckets,
	})

	registry.MustRegister(
		bidsAccepted,
		bidsRejected,
		transitions,
		tickFailures,
		tickDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:            registry,
		BidsAcceptedTotal:   bidsAccepted,
		BidsRejectedTotal:   bidsRejected,
		TransitionsTotal:    transitions,
		TickFailuresTotal:   tickFailures,
		TickDurationSeconds: tickDuration,
	}
}

func (m *MetricsManager) BidAccepted() {
	m.BidsAcceptedTotal.Inc()
}

func (m *MetricsManager) BidRejected(reason string) {
	m.BidsRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *MetricsManager) Transition(from string, to string) {
	m.TransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *MetricsManager) TickFailed() {
	m.TickFailuresTotal.Inc()
}

func (m *MetricsManager) TickDuration(d time.Duration) {
	m.TickDurationSeconds.Observe(d.Seconds())
}

func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

type Nop struct{}

func (Nop) BidAccepted() {}
func (Nop) BidRejected(string) {}
func (Nop) Transition(string, string) {}
func (Nop) TickFailed() {}
func (Nop) TickDuration(time.Duration) {}
