package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for Calculations.
const (
	OutcomeEligible   = "eligible"
	OutcomeIneligible = "ineligible"
	OutcomeInvalid    = "invalid"
	OutcomeOK         = "ok"
)

var (
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_calculations_total",
			Help: "Calculator runs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealdesk_calculation_duration_seconds",
			Help:    "Time spent in calculator runs",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"kind"},
	)

	Findings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_eligibility_findings_total",
			Help: "Eligibility issues and warnings raised, by category",
		},
		[]string{"kind", "category"},
	)

	ScenariosSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealdesk_scenarios_saved_total",
			Help: "Scenarios persisted against a deal",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_rate_limited_total",
			Help: "Requests rejected by the per-operator rate limiter",
		},
		[]string{"route"},
	)
)

// ObserveCalculation records one calculator run.
func ObserveCalculation(kind, outcome string, started time.Time) {
	Calculations.WithLabelValues(kind, outcome).Inc()
	CalculationDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}
