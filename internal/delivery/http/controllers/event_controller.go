package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// EventController handles per-event registration endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// Book godoc
// @Summary Register for an event
// @Description Create or resume a registration for one event. Free events and verified BIT students confirm without payment.
// @Tags event
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.EventBookRequest true "Booking data"
// @Success 200 {object} domain.RegisterResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /event/book [post]
func (c *EventController) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.EventBookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.Book(r.Context(), id, &req)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":     res.Status,
		"paymentUrl": res.PaymentURL,
	})
}

// Status godoc
// @Summary Registration status for one event
// @Tags event
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event id"
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Router /event/status/{eventId} [get]
func (c *EventController) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	eventID, err := strconv.Atoi(r.PathValue("eventId"))
	if err != nil || eventID <= 0 {
		helpers.WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	status, err := c.Service.Status(r.Context(), id, eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"eventId": eventID,
		"status":  status,
	})
}

// Registered godoc
// @Summary Events the user has registered for
// @Tags event
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} helpers.ErrorResponse
// @Router /event/registered [get]
func (c *EventController) Registered(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	statuses, err := c.Service.Registered(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	events := make(map[string]domain.PaymentStatus, len(statuses))
	for eventID, status := range statuses {
		events[strconv.Itoa(eventID)] = status
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{"events": events})
}
