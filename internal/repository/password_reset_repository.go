package repository

import (
	"errors"
	"time"

	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

var ErrResetNotFound = errors.New("password reset token not found")

type PasswordResetRepository interface {
	Create(reset *domain.PasswordReset) error
	// MarkAllUsedByUser retires every outstanding token before a new
	// one is issued (single active token policy).
	MarkAllUsedByUser(userID string) error
	FindLatestByHash(hash string) (*domain.PasswordReset, error)
	// Consume atomically sets the new password hash, marks the reset
	// row used, and revokes every active refresh token for the user.
	Consume(resetID uint, userID, newPasswordHash string) error
}

type GormPasswordResetRepository struct{ db *gorm.DB }

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

func (r *GormPasswordResetRepository) Create(reset *domain.PasswordReset) error {
	return r.db.Create(reset).Error
}

func (r *GormPasswordResetRepository) MarkAllUsedByUser(userID string) error {
	return r.db.Model(&domain.PasswordReset{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
}

func (r *GormPasswordResetRepository) FindLatestByHash(hash string) (*domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.db.Where("token_hash = ?", hash).
		Order("created_at DESC").
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetNotFound
		}
		return nil, err
	}
	return &reset, nil
}

func (r *GormPasswordResetRepository) Consume(resetID uint, userID, newPasswordHash string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.PasswordReset{}).
			Where("id = ? AND used = ?", resetID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResetNotFound
		}
		if err := tx.Model(&domain.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{"password_hash": newPasswordHash, "updated_at": time.Now().UTC()}).Error; err != nil {
			return err
		}
		return tx.Model(&domain.RefreshToken{}).
			Where("user_id = ? AND revoked = ?", userID, false).
			Update("revoked", true).Error
	})
}
