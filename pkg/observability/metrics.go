package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters. Registered on the default registry and served through
// MetricsHandler.
var (
	FeedbackSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Feedback submissions accepted, by kind.",
	}, []string{"kind"})

	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_moderation_actions_total",
		Help: "Bulk moderation actions applied, by action.",
	}, []string{"action"})

	MoralCheckRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_moral_check_requests_total",
		Help: "Moral check service calls, by outcome.",
	}, []string{"outcome"})

	SummaryRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_summary_refreshes_total",
		Help: "Denormalized summary recomputations, by kind.",
	}, []string{"kind"})
)
