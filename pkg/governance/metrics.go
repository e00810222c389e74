package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the governance layer.
type Metrics struct {
	// Execute outcomes
	requests *prometheus.CounterVec

	// Quota denials by dimension
	quotaDenials *prometheus.CounterVec

	// Breaker transitions
	breakerTransitions *prometheus.CounterVec

	// Downstream call latency
	computeDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with reg. A nil reg
// uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowalledge_governance_requests_total",
				Help: "Total number of governed requests by namespace and outcome",
			},
			[]string{"namespace", "outcome"},
		),

		quotaDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowalledge_governance_quota_denials_total",
				Help: "Total number of admission denials by quota dimension",
			},
			[]string{"dimension"},
		),

		breakerTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowalledge_governance_breaker_transitions_total",
				Help: "Total number of circuit breaker state transitions",
			},
			[]string{"name", "from", "to"},
		),

		computeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "knowalledge_governance_compute_duration_seconds",
				Help:    "Latency of downstream compute calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"namespace", "result"},
		),
	}
}

// recordOutcome counts one resolved Execute call.
func (m *Metrics) recordOutcome(namespace string, outcome Outcome) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(namespace, string(outcome)).Inc()
}

// recordDenial counts one quota denial.
func (m *Metrics) recordDenial(reason string) {
	if m == nil {
		return
	}
	m.quotaDenials.WithLabelValues(reason).Inc()
}

// recordTransition counts one breaker state transition.
func (m *Metrics) recordTransition(name, from, to string) {
	if m == nil {
		return
	}
	m.breakerTransitions.WithLabelValues(name, from, to).Inc()
}

// observeCompute records one downstream call's latency.
func (m *Metrics) observeCompute(namespace, result string, seconds float64) {
	if m == nil {
		return
	}
	m.computeDuration.WithLabelValues(namespace, result).Observe(seconds)
}
