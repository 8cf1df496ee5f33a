// Package metrics exposes Prometheus collectors for the matching pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineStageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_pipeline_stage_outcomes_total",
			Help: "Pipeline stage results by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_rate_limit_denials_total",
			Help: "Admission denials by limiter backend",
		},
		[]string{"backend"},
	)

	RateLimitFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_rate_limit_fallbacks_total",
			Help: "Shared store failures handled by the configured fallback policy",
		},
		[]string{"policy"},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "match_ranking_duration_seconds",
			Help: "Duration of candidate scoring and ranking",
		},
	)

	MatchCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_candidates_scored",
			Help:    "Number of candidates scored per matching request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
