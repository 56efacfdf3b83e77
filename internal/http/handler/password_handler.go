package handler

import (
	"net/http"

	"github.com/authhybrid/backend/internal/http/response"
	"github.com/authhybrid/backend/internal/service"
)

// PasswordHandler covers reset-token issuance and redemption.
type PasswordHandler struct {
	resets *service.PasswordResetService
}

func NewPasswordHandler(resets *service.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// RequestReset answers identically whether or not the address has an
// account.
func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	if err := h.resets.Request(r.Context(), req.Email, clientMeta(r)); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.Message(r.Context(), w, http.StatusOK, "If that email is registered, a reset link has been sent.")
}

func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	if err := h.resets.Consume(r.Context(), req.Token, req.NewPassword); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.Message(r.Context(), w, http.StatusOK, "Password has been reset successfully. Please login with your new password.")
}
