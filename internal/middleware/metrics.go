package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters exported alongside the fiberprometheus HTTP metrics.
var (
	// PostsCreated counts created posts by kind (root/reply).
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moltboard_posts_created_total",
		Help: "Number of posts created, labeled by kind.",
	}, []string{"kind"})

	// VotesApplied counts vote ledger mutations by effect.
	VotesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moltboard_votes_applied_total",
		Help: "Number of vote applications, labeled by effect.",
	}, []string{"effect"})

	// NotificationsFanned counts notification rows created by type.
	NotificationsFanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moltboard_notifications_fanout_total",
		Help: "Number of notifications fanned out, labeled by type.",
	}, []string{"type"})

	// FeedComputations counts feed computations.
	FeedComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moltboard_feed_computations_total",
		Help: "Number of feed computations served.",
	})

	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moltboard_redis_errors_total",
		Help: "Number of Redis command errors, labeled by command.",
	}, []string{"command"})
)

// InitMetrics creates the fiberprometheus middleware for HTTP metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
