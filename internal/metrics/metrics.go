package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carpool",
			Name:      "booking_events_total",
			Help:      "Booking lifecycle transitions by event.",
		},
		[]string{"event"},
	)

	notificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carpool",
			Name:      "notification_failures_total",
			Help:      "Chat notifications that could not be delivered, by event.",
		},
		[]string{"event"},
	)

	conversationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carpool",
			Name:      "conversations_created_total",
			Help:      "Conversations provisioned between passengers and drivers.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingEvents, notificationFailures, conversationsCreated)
	})
}

// IncBookingEvent increments the counter for a lifecycle event label
// (created, approved, rejected, cancelled).
func IncBookingEvent(event string) {
	bookingEvents.WithLabelValues(event).Inc()
}

// IncNotificationFailure counts a notification that was dropped after a
// committed lifecycle transition.
func IncNotificationFailure(event string) {
	notificationFailures.WithLabelValues(event).Inc()
}

// IncConversationCreated counts a newly provisioned conversation.
func IncConversationCreated() {
	conversationsCreated.Inc()
}
