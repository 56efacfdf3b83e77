package repository

import (
	"time"

	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(msg *domain.Message) error
	// ListByConversation pages backwards in time: messages strictly
	// older than before, newest first.
	ListByConversation(conversationID string, before time.Time, limit int) ([]domain.Message, error)
}

type GormMessageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(msg *domain.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		// Bump the conversation so listings order by recent activity.
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

func (r *GormMessageRepository) ListByConversation(conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	var msgs []domain.Message
	err := r.db.Where("conversation_id = ? AND created_at < ?", conversationID, before).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}
