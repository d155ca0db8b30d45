package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// BookingProxyController exposes raw provider booking operations for
// operator tooling. Callers authenticate with the static service token
// and supply the full provider payload themselves.
type BookingProxyController struct {
	Logger   *slog.Logger
	Provider domain.BookingProvider
}

func NewBookingProxyController(logger *slog.Logger, provider domain.BookingProvider) *BookingProxyController {
	return &BookingProxyController{Logger: logger, Provider: provider}
}

// Create godoc
// @Summary Create a provider booking directly
// @Tags booking
// @Accept json
// @Produce json
// @Param body body domain.BookingPayload true "Provider booking payload"
// @Success 200 {object} domain.BookingResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /booking [post]
func (c *BookingProxyController) Create(w http.ResponseWriter, r *http.Request) {
	var payload domain.BookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Ticket <= 0 || payload.Email == "" {
		helpers.WriteError(w, http.StatusBadRequest, "ticket and email are required")
		return
	}
	resp, err := c.Provider.CreateBooking(r.Context(), payload)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, resp)
}

// Fetch godoc
// @Summary Fetch a provider booking by uid
// @Tags booking
// @Produce json
// @Param uid path string true "Booking uid"
// @Success 200 {object} domain.FetchBookingResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /booking/{uid} [get]
func (c *BookingProxyController) Fetch(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")
	if uid == "" {
		helpers.WriteError(w, http.StatusBadRequest, "booking uid is required")
		return
	}
	resp, err := c.Provider.FetchBooking(r.Context(), uid)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, resp)
}
