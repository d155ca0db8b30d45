package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"technika/internal/delivery/http/helpers"
)

// WebhookRequest is the provider's payment-notification body. Only the
// booking uid is trusted; the authoritative state is re-fetched.
type WebhookRequest struct {
	BookingUID string `json:"booking_uid"`
}

// Validate implements the request validator contract.
func (r *WebhookRequest) Validate() []string {
	if r.BookingUID == "" {
		return []string{"booking_uid is required"}
	}
	return nil
}

// WebhookHandler applies a provider notification for one booking.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, bookingUID string)
}

// WebhookController receives provider payment notifications.
type WebhookController struct {
	Logger     *slog.Logger
	Reconciler WebhookHandler
}

func NewWebhookController(logger *slog.Logger, rec WebhookHandler) *WebhookController {
	return &WebhookController{Logger: logger, Reconciler: rec}
}

// Handle godoc
// @Summary Provider payment webhook
// @Description Re-fetches the booking from the provider and applies the resulting status. Unknown bookings are acknowledged without a write.
// @Tags webhook
// @Accept json
// @Param x-webhook-token header string true "Shared webhook secret"
// @Param body body controllers.WebhookRequest true "Notification"
// @Success 204
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /webhook [post]
func (c *WebhookController) Handle(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	// Delivery is acknowledged regardless of the apply outcome; a failed
	// apply is recovered by the pull path on the next status poll.
	c.Reconciler.HandleWebhook(r.Context(), req.BookingUID)
	w.WriteHeader(http.StatusNoContent)
}
