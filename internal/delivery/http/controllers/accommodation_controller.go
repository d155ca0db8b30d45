package controllers

import (
	"log/slog"
	"net/http"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// AccommodationController handles accommodation booking endpoints.
type AccommodationController struct {
	Logger  *slog.Logger
	Service domain.AccommodationService
}

func NewAccommodationController(logger *slog.Logger, svc domain.AccommodationService) *AccommodationController {
	return &AccommodationController{Logger: logger, Service: svc}
}

// Book godoc
// @Summary Book accommodation
// @Description Create or resume an accommodation booking for the authenticated user.
// @Tags accommodation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.AccommodationBookRequest true "Booking data"
// @Success 200 {object} domain.RegisterResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /accommodation/book [post]
func (c *AccommodationController) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.AccommodationBookRequest
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
// @Summary Accommodation booking status
// @Tags accommodation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.AccommodationStatus
// @Failure 401 {object} helpers.ErrorResponse
// @Router /accommodation/status [get]
func (c *AccommodationController) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status, err := c.Service.Status(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":  status.Status,
		"name":    status.Name,
		"phone":   status.Phone,
		"college": status.College,
	})
}
