package handler

import (
	"net/http"

	"github.com/authhybrid/backend/internal/http/response"
	"github.com/authhybrid/backend/internal/observability"
	"github.com/authhybrid/backend/internal/security"
	"github.com/authhybrid/backend/internal/service"
)

// UserHandler covers the credentials lifecycle: register, OTP
// verification, resend, and login.
type UserHandler struct {
	auth     *service.AuthService
	otps     *service.OTPService
	sessions *service.SessionService
	cookies  *security.CookieManager
}

func NewUserHandler(
	auth *service.AuthService,
	otps *service.OTPService,
	sessions *service.SessionService,
	cookies *security.CookieManager,
) *UserHandler {
	return &UserHandler{auth: auth, otps: otps, sessions: sessions, cookies: cookies}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	observability.Audit(r, "auth.register.accepted", "user_id", user.ID)
	response.JSON(r.Context(), w, http.StatusCreated, map[string]any{
		"message": "User registered successfully! Please check your email for the OTP.",
		"user":    map[string]string{"id": user.ID, "email": user.Email},
	})
}

func (h *UserHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OTP    string `json:"otp"`
		Email  string `json:"email"`
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	if req.OTP == "" || req.Email == "" || req.UserID == "" {
		response.JSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": "OTP, email, and userId are required!"})
		return
	}

	if err := h.otps.Verify(r.Context(), req.Email, req.UserID, req.OTP); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.Message(r.Context(), w, http.StatusOK, "Email verified successfully!")
}

func (h *UserHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	if req.Email == "" || req.UserID == "" {
		response.JSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": "Email and userId are required!"})
		return
	}

	if err := h.otps.Resend(r.Context(), req.Email, req.UserID); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.Message(r.Context(), w, http.StatusOK, "New OTP sent successfully!")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password, clientMeta(r))
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	h.sessions.Stamp(w, result.User)
	h.cookies.SetRefreshCookie(w, result.RefreshRaw)
	observability.Audit(r, "auth.login.accepted", "user_id", result.User.ID)
	response.JSON(r.Context(), w, http.StatusOK, loginBody("Login successful", result))
}

func loginBody(message string, result *service.AuthResult) map[string]any {
	body := map[string]any{
		"accessToken": result.AccessToken,
		"user":        result.User.Public(),
	}
	if message != "" {
		body["message"] = message
	}
	return body
}
