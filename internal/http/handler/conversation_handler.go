package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/http/middleware"
	"github.com/authhybrid/backend/internal/http/response"
	"github.com/authhybrid/backend/internal/service"

	"github.com/go-chi/chi/v5"
)

// ConversationHandler is the HTTP face of the messaging layer. Every
// route requires an access token; the acting user is always the token
// subject.
type ConversationHandler struct {
	conversations *service.ConversationService
	messages      *service.MessageService
}

func NewConversationHandler(conversations *service.ConversationService, messages *service.MessageService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, messages: messages}
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(r)
	if !ok {
		response.Error(r.Context(), w, apperr.Auth("Missing access token"))
		return
	}
	var req struct {
		ParticipantIDs []string `json:"participantIds"`
		Title          string   `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	conv, err := h.conversations.Create(r.Context(), userID, req.ParticipantIDs, req.Title)
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.JSON(r.Context(), w, http.StatusCreated, map[string]any{"conversation": conv})
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(r)
	if !ok {
		response.Error(r.Context(), w, apperr.Auth("Missing access token"))
		return
	}
	convs, err := h.conversations.ListForUser(r.Context(), userID)
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.JSON(r.Context(), w, http.StatusOK, map[string]any{"conversations": convs})
}

func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(r)
	if !ok {
		response.Error(r.Context(), w, apperr.Auth("Missing access token"))
		return
	}
	conversationID := chi.URLParam(r, "id")

	var before time.Time
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(r.Context(), w, apperr.Validation("before must be an RFC 3339 timestamp"))
			return
		}
		before = t
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(r.Context(), w, apperr.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	msgs, err := h.messages.List(r.Context(), conversationID, userID, before, limit)
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.JSON(r.Context(), w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(r)
	if !ok {
		response.Error(r.Context(), w, apperr.Auth("Missing access token"))
		return
	}
	conversationID := chi.URLParam(r, "id")
	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(r.Context(), w, err)
		return
	}

	msg, err := h.messages.Send(r.Context(), conversationID, userID, req.Body)
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.JSON(r.Context(), w, http.StatusCreated, map[string]any{"message": msg})
}

func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(r)
	if !ok {
		response.Error(r.Context(), w, apperr.Auth("Missing access token"))
		return
	}
	conversationID := chi.URLParam(r, "id")
	if err := h.conversations.MarkRead(r.Context(), conversationID, userID); err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.Message(r.Context(), w, http.StatusOK, "Conversation marked as read")
}

func subject(r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return "", false
	}
	return claims.Subject, true
}
