package handler

import (
	"errors"
	"net/http"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/http/middleware"
	"github.com/authhybrid/backend/internal/http/response"
	"github.com/authhybrid/backend/internal/repository"

	"gorm.io/gorm"
)

// ProfileHandler echoes the authenticated user's profile.
type ProfileHandler struct {
	users repository.UserRepository
}

func NewProfileHandler(users repository.UserRepository) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(r.Context(), w, apperr.Auth("Missing access token"))
		return
	}
	user, err := h.users.FindByID(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(r.Context(), w, apperr.NotFound("User not found!"))
			return
		}
		response.Error(r.Context(), w, apperr.Internal(err))
		return
	}
	response.JSON(r.Context(), w, http.StatusOK, map[string]any{"user": user.Public()})
}
