package controllers

import (
	"log/slog"
	"net/http"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// AlumniController handles alumni registration endpoints.
type AlumniController struct {
	Logger  *slog.Logger
	Service domain.AlumniService
}

func NewAlumniController(logger *slog.Logger, svc domain.AlumniService) *AlumniController {
	return &AlumniController{Logger: logger, Service: svc}
}

// Register godoc
// @Summary Register as an alumnus
// @Description Create or resume an alumni registration. Returns the payment redirect URL while payment is pending; repeated calls never create a duplicate booking.
// @Tags alumni
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.AlumniRegisterRequest true "Registration data"
// @Success 200 {object} domain.RegisterResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /alumni/register [post]
func (c *AlumniController) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.AlumniRegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.Register(r.Context(), id, &req)
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
// @Summary Alumni registration status
// @Description Returns the freshest known payment status, refreshing from the booking provider when not yet confirmed.
// @Tags alumni
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} helpers.ErrorResponse
// @Router /alumni/status [get]
func (c *AlumniController) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status, details, err := c.Service.Status(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	fields := map[string]any{"status": status}
	if details != nil {
		fields["details"] = details
	}
	helpers.WriteSuccess(w, http.StatusOK, fields)
}
