package database

import (
	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Account{},
		&domain.RefreshToken{},
		&domain.EmailOTP{},
		&domain.PasswordReset{},
		&domain.Conversation{},
		&domain.ConversationParticipant{},
		&domain.Message{},
	)
}
