package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationAttempts counts generation tier attempts by tier and outcome.
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyforge_generation_attempts_total",
		Help: "Total number of story generation tier attempts by tier and outcome",
	}, []string{"tier", "outcome"})

	// GenerationLatency records end-to-end generation latency.
	GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storyforge_generation_latency_seconds",
		Help:    "End-to-end story generation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyforge_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoriesSaved counts persisted stories by genre.
	StoriesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyforge_stories_saved_total",
		Help: "Total number of stories persisted by genre",
	}, []string{"genre"})
)

// ObserveGeneration records one complete generation pipeline run.
func ObserveGeneration(start time.Time) {
	GenerationLatency.Observe(time.Since(start).Seconds())
}
