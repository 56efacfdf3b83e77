package service

import (
	"context"
	"errors"
	"time"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationService is thin CRUD over conversations: 1:1s are
// deduplicated, groups need a title, and every read or write checks
// membership.
type ConversationService struct {
	conversations repository.ConversationRepository
	users         repository.UserRepository
}

func NewConversationService(conversations repository.ConversationRepository, users repository.UserRepository) *ConversationService {
	return &ConversationService{conversations: conversations, users: users}
}

// Create starts a conversation between the creator and participants.
// More than two total participants makes it a group, which requires a
// title; exactly two reuses an existing direct conversation instead
// of duplicating it.
func (s *ConversationService) Create(ctx context.Context, creatorID string, participantIDs []string, title string) (*domain.Conversation, error) {
	if len(participantIDs) == 0 {
		return nil, apperr.Validation("At least one participant is required")
	}

	seen := map[string]struct{}{creatorID: {}}
	all := []string{creatorID}
	for _, id := range participantIDs {
		if id == "" {
			return nil, apperr.Validation("Participant IDs must not be empty")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		all = append(all, id)
	}
	if len(all) < 2 {
		return nil, apperr.Validation("At least one participant is required")
	}

	isGroup := len(all) > 2
	if isGroup && title == "" {
		return nil, apperr.Validation("Group title is required for group conversations")
	}

	for _, id := range all {
		if _, err := s.users.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("One or more users not found")
			}
			return nil, apperr.Internal(err)
		}
	}

	if !isGroup {
		existing, err := s.conversations.FindDirectBetween(all[0], all[1])
		if err == nil && existing != nil {
			return nil, apperr.Conflict("Conversation already exists between these users")
		}
		if err != nil && !errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperr.Internal(err)
		}
	}

	conv := &domain.Conversation{
		ID:      uuid.NewString(),
		Title:   title,
		IsGroup: isGroup,
	}
	if err := s.conversations.CreateWithParticipants(conv, all); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.get(conv.ID)
}

// ListForUser returns the user's conversations, most recently active
// first.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convs, err := s.conversations.ListByUser(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return convs, nil
}

// MarkRead stamps the participant's read position at now.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, userID string) error {
	if err := s.requireParticipant(conversationID, userID); err != nil {
		return err
	}
	if err := s.conversations.MarkRead(conversationID, userID, time.Now()); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *ConversationService) requireParticipant(conversationID, userID string) error {
	ok, err := s.conversations.IsParticipant(conversationID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		// Non-participants cannot distinguish "no such conversation"
		// from "not yours".
		return apperr.NotFound("Conversation not found or access denied")
	}
	return nil
}

func (s *ConversationService) get(id string) (*domain.Conversation, error) {
	conv, err := s.conversations.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperr.NotFound("Conversation not found or access denied")
		}
		return nil, apperr.Internal(err)
	}
	return conv, nil
}
