package controllers

import (
	"log/slog"
	"net/http"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// MerchController handles merchandise orders.
type MerchController struct {
	Logger  *slog.Logger
	Service domain.MerchService
}

func NewMerchController(logger *slog.Logger, svc domain.MerchService) *MerchController {
	return &MerchController{Logger: logger, Service: svc}
}

// Order godoc
// @Summary Place a merchandise order
// @Description Creates a new paid order. Multiple orders per user are allowed.
// @Tags merch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.MerchOrderRequest true "Order data"
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /merch/order [post]
func (c *MerchController) Order(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.MerchOrderRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	orderID, res, err := c.Service.Order(r.Context(), id, &req)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"orderId":    orderID,
		"status":     res.Status,
		"paymentUrl": res.PaymentURL,
	})
}

// Orders godoc
// @Summary List the user's merchandise orders
// @Tags merch
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} helpers.ErrorResponse
// @Router /merch/orders [get]
func (c *MerchController) Orders(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orders, err := c.Service.Orders(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if orders == nil {
		orders = []domain.MerchOrderSummary{}
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{"orders": orders})
}

// OrderStatus godoc
// @Summary Status of one merchandise order
// @Description Refreshes the payment state from the provider and returns the QR checksum once paid.
// @Tags merch
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order id"
// @Success 200 {object} domain.MerchOrderStatus
// @Failure 404 {object} helpers.ErrorResponse
// @Router /merch/order/{id} [get]
func (c *MerchController) OrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orderID := r.PathValue("id")
	if orderID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "order id is required")
		return
	}
	status, err := c.Service.OrderStatus(r.Context(), id, orderID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, status)
}
