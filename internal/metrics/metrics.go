package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Throughput metrics - Track submitted calls and state reads
var (
	CallsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arc56_calls_submitted_total",
			Help: "Total number of method calls submitted by method and action",
		},
		[]string{"method", "action"},
	)

	GroupsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arc56_groups_submitted_total",
		Help: "Total number of atomic groups submitted",
	})

	DeploymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arc56_deployments_created_total",
		Help: "Total number of applications created",
	})

	StateReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arc56_state_reads_total",
			Help: "Total number of storage reads by namespace",
		},
		[]string{"namespace"},
	)

	ActivitiesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arc56_activities_saved_total",
		Help: "Total number of call activities persisted",
	})
)

// Performance metrics - Track ledger round trips
var (
	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arc56_submission_duration_seconds",
		Help:    "Time taken to submit a group and wait for confirmation",
		Buckets: prometheus.DefBuckets,
	})

	CompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arc56_compile_duration_seconds",
		Help:    "Time taken to compile a program",
		Buckets: prometheus.DefBuckets,
	})

	DatabaseWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arc56_db_write_duration_seconds",
		Help:    "Time taken to persist a deployment or activity",
		Buckets: prometheus.DefBuckets,
	})
)

// State metrics - Track the bound application
var (
	CurrentAppID = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arc56_current_app_id",
		Help: "Application id the client is bound to (0 before creation)",
	})
)

// Error metrics - Track failures
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arc56_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component"},
	)

	TranslatedErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arc56_translated_errors_total",
		Help: "Total number of execution failures mapped to a developer message",
	})
)
