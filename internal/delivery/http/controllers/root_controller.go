package controllers

import (
	"net/http"
	"strings"

	"technika/internal/delivery/http/helpers"
)

// RootController serves the service banner and the public email-domain check.
type RootController struct {
	ServiceName string
	Version     string
	BitDomain   string
}

func NewRootController(serviceName, version, bitDomain string) *RootController {
	return &RootController{ServiceName: serviceName, Version: version, BitDomain: bitDomain}
}

// Index godoc
// @Summary Service banner
// @Tags root
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func (c *RootController) Index(w http.ResponseWriter, r *http.Request) {
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"service": c.ServiceName,
		"version": c.Version,
	})
}

// IsBitEmail godoc
// @Summary Check whether an email belongs to the institute domain
// @Tags root
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Router /isBitEmail/{email} [get]
func (c *RootController) IsBitEmail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" || !strings.Contains(email, "@") {
		helpers.WriteError(w, http.StatusBadRequest, "invalid email")
		return
	}
	isBit := strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(c.BitDomain))
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{"isBitEmail": isBit})
}
