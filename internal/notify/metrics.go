package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Schedule outcomes.
const (
	outcomeScheduled = "scheduled"
	outcomeDenied    = "denied"
	outcomeRejected  = "rejected"
)

// Cancel outcomes.
const (
	outcomeCancelled = "cancelled"
	outcomeStale     = "stale"
	outcomeFailed    = "failed"
)

var (
	ScheduleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskremind_schedule_requests_total",
		Help: "Notification schedule requests by channel and outcome.",
	}, []string{"channel", "outcome"})

	Cancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskremind_cancellations_total",
		Help: "Notification cancellations by outcome.",
	}, []string{"outcome"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskremind_deliveries_total",
		Help: "Notifications received or tapped, by payload kind.",
	}, []string{"event", "kind"})
)

func recordSchedule(ch ChannelID, outcome string) {
	ScheduleRequests.WithLabelValues(string(ch), outcome).Inc()
}

func recordCancel(outcome string) {
	Cancellations.WithLabelValues(outcome).Inc()
}
