package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viddefe/go-viddefe/internal/dependent"
	"github.com/viddefe/go-viddefe/internal/query"
)

var ErrNamespaceRequired = errors.New("metrics: namespace is required")

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Collector records fetch, dependent list and mutation activity.
type Collector struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	inFlight      *prometheus.GaugeVec
	requests      *prometheus.CounterVec
	discarded     *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	mutationTime  *prometheus.HistogramVec
}

var (
	_ query.Observer     = (*Collector)(nil)
	_ dependent.Observer = (*Collector)(nil)
)

// NewCollector registers the collectors on registerer. A nil registerer
// uses a private registry.
func NewCollector(namespace string, registerer prometheus.Registerer) (*Collector, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, ErrNamespaceRequired
	}
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetches_total",
			Help:      "Remote entity fetches by query and outcome.",
		}, []string{"query", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_duration_seconds",
			Help:      "Remote entity fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "in_flight",
			Help:      "Fetches currently running.",
		}, []string{"query"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependent",
			Name:      "requests_total",
			Help:      "Dependent collection loads issued.",
		}, []string{"collection"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependent",
			Name:      "stale_discarded_total",
			Help:      "Dependent collection responses dropped because the key moved on.",
		}, []string{"collection"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mutation",
			Name:      "total",
			Help:      "Mutations by name and outcome.",
		}, []string{"mutation", "outcome"}),
		mutationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mutation",
			Name:      "duration_seconds",
			Help:      "Mutation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mutation"}),
	}

	for _, collector := range []prometheus.Collector{
		c.fetches, c.fetchDuration, c.inFlight, c.requests, c.discarded, c.mutations, c.mutationTime,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FetchStarted implements query.Observer.
func (c *Collector) FetchStarted(name string) {
	c.inFlight.WithLabelValues(name).Inc()
}

// FetchFinished implements query.Observer.
func (c *Collector) FetchFinished(name string, err error, elapsed time.Duration) {
	c.inFlight.WithLabelValues(name).Dec()
	c.fetches.WithLabelValues(name, outcome(err)).Inc()
	c.fetchDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Requested implements dependent.Observer.
func (c *Collector) Requested(name string) {
	c.requests.WithLabelValues(name).Inc()
}

// Discarded implements dependent.Observer.
func (c *Collector) Discarded(name string) {
	c.discarded.WithLabelValues(name).Inc()
}

// MutationFinished implements mutation.Observer and commands.OutcomeRecorder.
func (c *Collector) MutationFinished(name string, err error, elapsed time.Duration) {
	c.mutations.WithLabelValues(name, outcome(err)).Inc()
	c.mutationTime.WithLabelValues(name).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeSuccess
}
