package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// BookController handles direct ticket bookings keyed by provider ticket id.
type BookController struct {
	Logger  *slog.Logger
	Service domain.TicketBookingService
}

func NewBookController(logger *slog.Logger, svc domain.TicketBookingService) *BookController {
	return &BookController{Logger: logger, Service: svc}
}

// Book godoc
// @Summary Book a ticket by id
// @Description Creates or resumes a booking for one of the allow-listed ticket ids.
// @Tags book
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ticketId path int true "Ticket id"
// @Param body body domain.TicketBookRequest true "Booking data"
// @Success 200 {object} domain.RegisterResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /book/{ticketId} [post]
func (c *BookController) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ticketID, err := strconv.Atoi(r.PathValue("ticketId"))
	if err != nil || ticketID <= 0 {
		helpers.WriteError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	var req domain.TicketBookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.Book(r.Context(), id, ticketID, &req)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":     res.Status,
		"paymentUrl": res.PaymentURL,
	})
}
