package repository

import (
	"errors"
	"time"

	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

var ErrOTPNotFound = errors.New("otp not found")

type EmailOTPRepository interface {
	Create(otp *domain.EmailOTP) error
	// FindLatestActive returns the newest unused, unrevoked, unexpired
	// code for the (email, user) pair.
	FindLatestActive(email, userID string, now time.Time) (*domain.EmailOTP, error)
	IncrementAttempts(id uint) error
	// Consume marks the code used (resetting attempts) and flips the
	// owner's email-verified flag in the same transaction.
	Consume(id uint, userID string) error
	RevokeActiveByUser(email, userID string) error
}

type GormEmailOTPRepository struct{ db *gorm.DB }

func NewEmailOTPRepository(db *gorm.DB) EmailOTPRepository {
	return &GormEmailOTPRepository{db: db}
}

func (r *GormEmailOTPRepository) Create(otp *domain.EmailOTP) error {
	return r.db.Create(otp).Error
}

func (r *GormEmailOTPRepository) FindLatestActive(email, userID string, now time.Time) (*domain.EmailOTP, error) {
	var otp domain.EmailOTP
	err := r.db.
		Where("email = ? AND user_id = ? AND used = ? AND revoked = ? AND expires_at > ?",
			email, userID, false, false, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	return &otp, nil
}

func (r *GormEmailOTPRepository) IncrementAttempts(id uint) error {
	return r.db.Model(&domain.EmailOTP{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *GormEmailOTPRepository) Consume(id uint, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.EmailOTP{}).
			Where("id = ? AND used = ?", id, false).
			Updates(map[string]any{"used": true, "attempts": 0})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOTPNotFound
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", userID).
			Update("is_email_verified", true).Error
	})
}

func (r *GormEmailOTPRepository) RevokeActiveByUser(email, userID string) error {
	return r.db.Model(&domain.EmailOTP{}).
		Where("email = ? AND user_id = ? AND used = ? AND revoked = ?", email, userID, false, false).
		Update("revoked", true).Error
}
