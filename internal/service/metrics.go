package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	// phaseComplete labels successful runs, which have no failing phase.
	phaseComplete = "COMPLETE"
)

var (
	pipelinePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizly_pipeline_phase_duration_seconds",
			Help:    "Duration of quiz generation pipeline phases",
			Buckets: []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"phase"},
	)

	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizly_pipeline_runs_total",
			Help: "Quiz generation runs by outcome and the phase that ended them",
		},
		[]string{"outcome", "phase"},
	)
)
