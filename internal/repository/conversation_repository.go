package repository

import (
	"errors"
	"time"

	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	// CreateWithParticipants inserts the conversation and all
	// participant rows in one transaction.
	CreateWithParticipants(conv *domain.Conversation, userIDs []string) error
	FindByID(id string) (*domain.Conversation, error)
	ListByUser(userID string) ([]domain.Conversation, error)
	// FindDirectBetween locates an existing non-group conversation
	// whose participant set is exactly the two given users.
	FindDirectBetween(userA, userB string) (*domain.Conversation, error)
	IsParticipant(conversationID, userID string) (bool, error)
	MarkRead(conversationID, userID string, at time.Time) error
}

type GormConversationRepository struct{ db *gorm.DB }

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) CreateWithParticipants(conv *domain.Conversation, userIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range userIDs {
			p := domain.ConversationParticipant{ConversationID: conv.ID, UserID: uid}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormConversationRepository) FindByID(id string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.Preload("Participants").First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormConversationRepository) ListByUser(userID string) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants").
		Order("conversations.updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *GormConversationRepository) FindDirectBetween(userA, userB string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.
		Joins("JOIN conversation_participants pa ON pa.conversation_id = conversations.id AND pa.user_id = ?", userA).
		Joins("JOIN conversation_participants pb ON pb.conversation_id = conversations.id AND pb.user_id = ?", userB).
		Where("conversations.is_group = ?", false).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormConversationRepository) IsParticipant(conversationID, userID string) (bool, error) {
	var n int64
	err := r.db.Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormConversationRepository) MarkRead(conversationID, userID string, at time.Time) error {
	return r.db.Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", at).Error
}
