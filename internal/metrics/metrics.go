package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	usersProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_users_processed_total",
			Help: "Users processed by the batch, by outcome",
		},
		[]string{"outcome"},
	)

	eventsScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_events_scored_total",
			Help: "Activity events folded into scores",
		},
	)

	eventsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_events_skipped_total",
			Help: "Malformed activity events skipped during aggregation",
		},
	)

	userDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_user_duration_seconds",
			Help:    "Per-user pipeline duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_batch_duration_seconds",
			Help:    "Full batch run duration in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)

	batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_batch_runs_total",
			Help: "Batch runs, by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordUserProcessed records one completed per-user pipeline.
func RecordUserProcessed(outcome string, duration time.Duration) {
	usersProcessedTotal.WithLabelValues(outcome).Inc()
	userDuration.Observe(duration.Seconds())
}

// RecordEventsScored adds to the scored-event counter.
func RecordEventsScored(n int) {
	eventsScoredTotal.Add(float64(n))
}

// RecordEventsSkipped adds to the malformed-event counter.
func RecordEventsSkipped(n int) {
	eventsSkippedTotal.Add(float64(n))
}

// RecordBatchRun records one full pass over the user population.
func RecordBatchRun(outcome string, duration time.Duration) {
	batchRunsTotal.WithLabelValues(outcome).Inc()
	batchDuration.Observe(duration.Seconds())
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
