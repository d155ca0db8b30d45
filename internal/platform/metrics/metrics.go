package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts provider bookings created, by category.
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "technika_bookings_created_total",
		Help: "Provider bookings created, by registration category.",
	}, []string{"category"})

	// WebhooksProcessed counts webhook deliveries, by outcome.
	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "technika_webhooks_processed_total",
		Help: "Webhook deliveries processed, by outcome.",
	}, []string{"outcome"})
)

// IncBookingCreated records one created booking for a category.
func IncBookingCreated(category string) {
	BookingsCreated.WithLabelValues(category).Inc()
}

// IncWebhookProcessed records one processed webhook delivery.
func IncWebhookProcessed(outcome string) {
	WebhooksProcessed.WithLabelValues(outcome).Inc()
}
