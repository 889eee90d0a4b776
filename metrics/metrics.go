// Package metrics provides Prometheus metrics collection for the planning
// API. Besides the HTTP request metrics it tracks engine-level counters:
// evaluations, discarded candidates, combination-ceiling fallbacks and
// scoring-policy reloads. All metrics register with the default registry at
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen recently)",
		},
	)

	PlanEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_evaluations_total",
			Help: "Case evaluations by outcome (ok, input_error, no_feasible_plan, error)",
		},
		[]string{"outcome"},
	)

	PlanEvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_evaluation_duration_seconds",
			Help:    "End-to-end planning engine latency",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	CandidatesDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "candidates_discarded_total",
			Help: "Candidates excluded by absolute rules",
		},
	)

	CombinationOverflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "combination_overflow_total",
			Help: "Evaluations that fell back to the greedy-best approximation",
		},
	)

	RulesetReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ruleset_reloads_total",
			Help: "Scoring policy reload attempts by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(PlanEvaluationsTotal)
	prometheus.MustRegister(PlanEvaluationDuration)
	prometheus.MustRegister(CandidatesDiscardedTotal)
	prometheus.MustRegister(CombinationOverflowTotal)
	prometheus.MustRegister(RulesetReloadsTotal)
}
