package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outfitai_recommendation_runs_total",
		Help: "Recommendation pipeline runs by outcome.",
	}, []string{"outcome"})

	recommendationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outfitai_recommendation_stage_duration_seconds",
		Help:    "Duration of recommendation pipeline stages.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"stage"})

	savedOutfitOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outfitai_saved_outfit_operations_total",
		Help: "Saved-outfit operations by type and outcome.",
	}, []string{"operation", "outcome"})
)
