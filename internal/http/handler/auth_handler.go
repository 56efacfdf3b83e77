package handler

import (
	"net/http"

	"github.com/authhybrid/backend/internal/http/response"
	"github.com/authhybrid/backend/internal/observability"
	"github.com/authhybrid/backend/internal/security"
	"github.com/authhybrid/backend/internal/service"
)

// AuthHandler covers the OAuth sign-in paths and the refresh/logout
// pair that works off the refresh cookie.
type AuthHandler struct {
	auth     *service.AuthService
	tokens   *service.TokenService
	sessions *service.SessionService
	cookies  *security.CookieManager
}

func NewAuthHandler(
	auth *service.AuthService,
	tokens *service.TokenService,
	sessions *service.SessionService,
	cookies *security.CookieManager,
) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, sessions: sessions, cookies: cookies}
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		GoogleID string `json:"googleId"`
		Image    string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	result, err := h.auth.GoogleOAuth(r.Context(), service.GoogleInput{
		Email:    req.Email,
		Name:     req.Name,
		GoogleID: req.GoogleID,
		Image:    req.Image,
	}, clientMeta(r))
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	h.cookies.SetRefreshCookie(w, result.RefreshRaw)
	observability.Audit(r, "auth.oauth.accepted", "user_id", result.User.ID, "provider", "google")
	response.JSON(r.Context(), w, http.StatusOK, loginBody("", result))
}

func (h *AuthHandler) GitHub(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Name        string `json:"name"`
		GitHubID    string `json:"githubId"`
		Image       string `json:"image"`
		AccessToken string `json:"accessToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	result, err := h.auth.GitHubOAuth(r.Context(), service.GitHubInput{
		Email:       req.Email,
		Name:        req.Name,
		GitHubID:    req.GitHubID,
		Image:       req.Image,
		AccessToken: req.AccessToken,
	}, clientMeta(r))
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	h.cookies.SetRefreshCookie(w, result.RefreshRaw)
	observability.Audit(r, "auth.oauth.accepted", "user_id", result.User.ID, "provider", "github")
	response.JSON(r.Context(), w, http.StatusOK, loginBody("", result))
}

// Refresh rotates the presented refresh cookie and returns a fresh
// access token. The raw secret only ever moves through the cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshCookieName)
	if raw == "" {
		observability.RecordAuthRefresh(r.Context(), "missing_cookie")
		response.JSON(r.Context(), w, http.StatusUnauthorized, map[string]string{"error": "No refresh token"})
		return
	}

	user, err := h.tokens.Verify(r.Context(), raw)
	if err != nil {
		observability.RecordAuthRefresh(r.Context(), "invalid")
		response.Error(r.Context(), w, err)
		return
	}

	access, newRaw, err := h.tokens.Rotate(r.Context(), user, raw, clientMeta(r))
	if err != nil {
		observability.RecordAuthRefresh(r.Context(), "error")
		response.Error(r.Context(), w, err)
		return
	}

	h.cookies.SetRefreshCookie(w, newRaw)
	observability.RecordAuthRefresh(r.Context(), "success")
	response.JSON(r.Context(), w, http.StatusOK, map[string]any{
		"accessToken": access,
		"user":        user.Public(),
	})
}

// Logout revokes the presented refresh secret (if any) and clears
// both cookies. Always succeeds: logging out twice is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshCookieName)
	if err := h.tokens.RevokeByRaw(r.Context(), raw); err != nil {
		observability.RecordAuthLogout(r.Context(), "error")
		response.Error(r.Context(), w, err)
		return
	}

	h.sessions.Clear(w)
	h.cookies.ClearRefreshCookie(w)
	observability.RecordAuthLogout(r.Context(), "success")
	response.Message(r.Context(), w, http.StatusOK, "Logged out successfully")
}
