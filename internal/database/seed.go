package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/security"
)

// SeedDevData inserts a small, re-runnable set of local development
// fixtures: two verified credential users, one unverified user, and a
// direct conversation with a short exchange between the verified two.
// Every insert is keyed on a stable natural identifier so running it
// twice is a no-op.
func SeedDevData(db *gorm.DB, bcryptCost int) error {
	alice, err := ensureUser(db, "alice@example.dev", "Alice Dev", "password123", true, bcryptCost)
	if err != nil {
		return err
	}
	bob, err := ensureUser(db, "bob@example.dev", "Bob Dev", "password123", true, bcryptCost)
	if err != nil {
		return err
	}
	if _, err := ensureUser(db, "carol@example.dev", "Carol Dev", "password123", false, bcryptCost); err != nil {
		return err
	}
	return ensureDirectConversation(db, alice, bob,
		"Hey Bob, checking the local setup.",
		"Looks good from here.",
	)
}

// VerifyEmail marks the credential user with the given email as
// verified and revokes any outstanding OTP codes for it.
func VerifyEmail(db *gorm.DB, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}
	var user domain.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return fmt.Errorf("find user %s: %w", email, err)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.User{}).Where("id = ?", user.ID).
			Update("is_email_verified", true).Error; err != nil {
			return err
		}
		return tx.Model(&domain.EmailOTP{}).
			Where("user_id = ? AND used = ? AND revoked = ?", user.ID, false, false).
			Update("revoked", true).Error
	})
}

func ensureUser(db *gorm.DB, email, name, password string, verified bool, bcryptCost int) (*domain.User, error) {
	email = strings.ToLower(email)
	var existing domain.User
	err := db.First(&existing, "email = ?", email).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := security.HashSecret(password, bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            name,
		PasswordHash:    &hash,
		Role:            "user",
		IsEmailVerified: verified,
	}
	return user, db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Account{
			UserID:            user.ID,
			Provider:          domain.ProviderCredentials,
			ProviderAccountID: email,
		}).Error
	})
}

func ensureDirectConversation(db *gorm.DB, a, b *domain.User, firstMsg, replyMsg string) error {
	var existing domain.Conversation
	err := db.
		Joins("JOIN conversation_participants p1 ON p1.conversation_id = conversations.id AND p1.user_id = ?", a.ID).
		Joins("JOIN conversation_participants p2 ON p2.conversation_id = conversations.id AND p2.user_id = ?", b.ID).
		Where("conversations.is_group = ?", false).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	conv := &domain.Conversation{ID: uuid.NewString()}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range []string{a.ID, b.ID} {
			if err := tx.Create(&domain.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         uid,
			}).Error; err != nil {
				return err
			}
		}
		for i, m := range []struct {
			sender string
			body   string
		}{{a.ID, firstMsg}, {b.ID, replyMsg}} {
			if err := tx.Create(&domain.Message{
				ID:             uuid.NewString(),
				ConversationID: conv.ID,
				SenderID:       m.sender,
				Body:           m.body,
				CreatedAt:      time.Now().Add(time.Duration(i) * time.Second),
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
