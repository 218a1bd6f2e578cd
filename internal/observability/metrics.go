// Package observability registers the Prometheus metrics for the engine.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	challengesGeneratedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthtrack",
		Subsystem: "gamification",
		Name:      "challenges_generated_total",
		Help:      "Number of daily challenges created by the generator.",
	})

	challengesCompletedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthtrack",
		Subsystem: "gamification",
		Name:      "challenges_completed_total",
		Help:      "Number of challenges completed, labeled by kind.",
	}, []string{"kind"})

	levelUpsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthtrack",
		Subsystem: "gamification",
		Name:      "level_ups_total",
		Help:      "Number of level increments awarded.",
	})

	recordPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthtrack",
		Subsystem: "persistence",
		Name:      "last_record_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent health record persisted to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(challengesGeneratedCounter, challengesCompletedCounter, levelUpsCounter, recordPersistGauge)
}

// RecordChallengesGenerated counts a freshly created batch.
func RecordChallengesGenerated(n int) {
	if n <= 0 {
		return
	}
	challengesGeneratedCounter.Add(float64(n))
}

// RecordChallengeCompleted counts a completion by kind.
func RecordChallengeCompleted(kind string) {
	challengesCompletedCounter.WithLabelValues(kind).Inc()
}

// RecordLevelUps counts level increments.
func RecordLevelUps(n int) {
	if n <= 0 {
		return
	}
	levelUpsCounter.Add(float64(n))
}

// RecordPersisted updates the persistence watermark gauge.
func RecordPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	recordPersistGauge.Set(float64(ts.Unix()))
}
