package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram

	// Community feed metrics
	PostsCreated   prometheus.Counter
	LikesRecorded  prometheus.Counter
	DuplicateLikes prometheus.Counter
	FeedCacheHits  prometheus.Counter
	FeedCacheMiss  prometheus.Counter

	// Mock payment metrics
	PaymentIntents   prometheus.Counter
	PaymentOutcomes  *prometheus.CounterVec
	EmailsSent       *prometheus.CounterVec
	IntakeSubmitted  prometheus.Counter
	BookingsCreated  prometheus.Counter
	BookingConflicts prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		PostsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "community_posts_created_total",
			Help:      "Total number of community posts created",
		}),
		LikesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "community_likes_recorded_total",
			Help:      "Total number of first-time likes recorded",
		}),
		DuplicateLikes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "community_likes_duplicate_total",
			Help:      "Total number of like requests dropped as duplicates",
		}),
		FeedCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_hits_total",
			Help:      "Total number of feed reads served from cache",
		}),
		FeedCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_misses_total",
			Help:      "Total number of feed reads that fell through to the database",
		}),
		PaymentIntents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intents_created_total",
			Help:      "Total number of mock payment intents created",
		}),
		PaymentOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_confirmations_total",
			Help:      "Mock payment confirmation outcomes",
		}, []string{"status"}),
		EmailsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Total number of notification emails sent",
		}, []string{"kind", "status"}),
		IntakeSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_requests_submitted_total",
			Help:      "Total number of intake requests accepted",
		}),
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings created",
		}),
		BookingConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Total number of booking attempts rejected for slot conflicts",
		}),
	}
}
