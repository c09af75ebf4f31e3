package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Crafting Metrics
var (
	CraftAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCraftAttempts,
			Help: HelpTextCraftAttempts,
		},
		[]string{LabelRecipe, LabelOutcome},
	)

	ConsistencyViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameConsistencyViolations,
			Help: HelpTextConsistencyViolations,
		},
	)

	RecipeConfigErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRecipeConfigErrors,
			Help: HelpTextRecipeConfigErrors,
		},
	)

	AttemptLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAttemptLogFailures,
			Help: HelpTextAttemptLogFailures,
		},
	)

	AutoCraftSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAutoCraftSessions,
			Help: HelpTextAutoCraftSessions,
		},
	)

	AutoCraftRetrySleeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAutoCraftRetrySleeps,
			Help: HelpTextAutoCraftRetrySleeps,
		},
	)
)
