package service

import (
	"context"
	"strings"
	"time"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/repository"

	"github.com/google/uuid"
)

const defaultMessagePageSize = 50

// MessageService sends and lists messages, gated on conversation
// membership.
type MessageService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
}

func NewMessageService(messages repository.MessageRepository, conversations repository.ConversationRepository) *MessageService {
	return &MessageService{messages: messages, conversations: conversations}
}

// Send appends a message from senderID to the conversation, bumping
// the conversation's activity timestamp in the same transaction.
func (s *MessageService) Send(ctx context.Context, conversationID, senderID, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.Validation("Message content is required")
	}
	if err := s.requireParticipant(conversationID, senderID); err != nil {
		return nil, err
	}
	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, apperr.Internal(err)
	}
	return msg, nil
}

// List pages backwards in time from before (zero means now), newest
// first, at most limit entries.
func (s *MessageService) List(ctx context.Context, conversationID, userID string, before time.Time, limit int) ([]domain.Message, error) {
	if err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	if before.IsZero() {
		before = time.Now()
	}
	if limit <= 0 || limit > defaultMessagePageSize {
		limit = defaultMessagePageSize
	}
	msgs, err := s.messages.ListByConversation(conversationID, before, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return msgs, nil
}

func (s *MessageService) requireParticipant(conversationID, userID string) error {
	ok, err := s.conversations.IsParticipant(conversationID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("Conversation not found or access denied")
	}
	return nil
}
