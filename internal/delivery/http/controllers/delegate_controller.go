package controllers

import (
	"log/slog"
	"net/http"

	"technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// DelegateContactRequest is the contact payload shared by room creation,
// joining and self registration.
type DelegateContactRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	College string `json:"college,omitempty"`
	Address string `json:"address,omitempty"`
}

// Validate implements Validator.
func (r *DelegateContactRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(r.Phone) < 10 {
		errs = append(errs, "phone must be at least 10 digits")
	}
	return errs
}

// JoinRoomRequest is the room join payload.
type JoinRoomRequest struct {
	DelegateContactRequest
	RoomID string `json:"roomId"`
}

// Validate implements Validator.
func (r *JoinRoomRequest) Validate() []string {
	errs := r.DelegateContactRequest.Validate()
	if r.RoomID == "" {
		errs = append(errs, "roomId is required")
	}
	return errs
}

// DelegateController handles delegate room and registration endpoints.
type DelegateController struct {
	Logger  *slog.Logger
	Service domain.DelegateService
}

func NewDelegateController(logger *slog.Logger, svc domain.DelegateService) *DelegateController {
	return &DelegateController{Logger: logger, Service: svc}
}

func (c *DelegateController) contact(id domain.Identity, req *DelegateContactRequest) domain.ContactInfo {
	return domain.ContactInfo{
		Name:    req.Name,
		Email:   id.Email,
		Phone:   req.Phone,
		College: req.College,
	}
}

// CreateRoom godoc
// @Summary Create a delegate room
// @Description Creates a room owned by the caller. Calling again returns the existing room id; members of other rooms may not create one.
// @Tags delegate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DelegateContactRequest true "Owner contact"
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /delegate/create [post]
func (c *DelegateController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req DelegateContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	roomID, err := c.Service.CreateRoom(r.Context(), id, c.contact(id, &req))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{"roomId": roomID})
}

// JoinRoom godoc
// @Summary Join a delegate room
// @Tags delegate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinRoomRequest true "Member contact and room id"
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /delegate/join [post]
func (c *DelegateController) JoinRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req JoinRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.JoinRoom(r.Context(), id, req.RoomID, c.contact(id, &req.DelegateContactRequest)); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{"roomId": req.RoomID})
}

// LeaveRoom godoc
// @Summary Leave the joined delegate room
// @Tags delegate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /delegate/leave [delete]
func (c *DelegateController) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.LeaveRoom(r.Context(), id); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, nil)
}

// DeleteRoom godoc
// @Summary Delete the owned delegate room
// @Description Only the owner may delete; the room id is cleared from every member.
// @Tags delegate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /delegate/delete [delete]
func (c *DelegateController) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteRoom(r.Context(), id); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, nil)
}

// RegisterSelf godoc
// @Summary Register as an individual delegate
// @Tags delegate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DelegateContactRequest true "Contact"
// @Success 200 {object} domain.RegisterResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /delegate/register/self [post]
func (c *DelegateController) RegisterSelf(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req DelegateContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.RegisterSelf(r.Context(), id, c.contact(id, &req), req.Address)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":     res.Status,
		"paymentUrl": res.PaymentURL,
	})
}

// RegisterGroup godoc
// @Summary Register the whole room
// @Description Bulk-books the owner and all members as one payment. Only the room owner may call this.
// @Tags delegate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.RegisterResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse
// @Router /delegate/register/group [post]
func (c *DelegateController) RegisterGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := c.Service.RegisterGroup(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":     res.Status,
		"paymentUrl": res.PaymentURL,
	})
}

// UserStatus godoc
// @Summary Delegate status for the authenticated user
// @Tags delegate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.DelegateUserStatus
// @Failure 401 {object} helpers.ErrorResponse
// @Router /delegate/status/user [get]
func (c *DelegateController) UserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status, err := c.Service.UserStatus(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, status)
}

// RoomStatus godoc
// @Summary Delegate room status
// @Tags delegate
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room id"
// @Success 200 {object} domain.RoomStatus
// @Failure 404 {object} helpers.ErrorResponse
// @Router /delegate/status/room/{roomId} [get]
func (c *DelegateController) RoomStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	roomID := r.PathValue("roomId")
	if roomID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "roomId is required")
		return
	}
	status, err := c.Service.RoomStatus(r.Context(), id, roomID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, status)
}

// QR godoc
// @Summary Delegate entry QR checksum
// @Description Returns the provider checksum backing the entry QR code. Available only once payment is confirmed.
// @Tags delegate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /delegate/qr [get]
func (c *DelegateController) QR(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	checksum, err := c.Service.QRChecksum(r.Context(), id)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, map[string]any{"checksum": checksum})
}
