package repository

import (
	"time"

	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

type RefreshTokenRepository interface {
	Create(token *domain.RefreshToken) error
	// FindActiveByHash returns the row matching hash that is neither
	// revoked nor expired; revoked or expired rows behave as absent.
	FindActiveByHash(hash string, now time.Time) (*domain.RefreshToken, error)
	RevokeByHash(hash string) (int64, error)
	RevokeAllByUser(userID string) error
	// Rotate revokes the old hash and inserts the replacement row in
	// one transaction; partial application is never observable.
	Rotate(oldHash string, replacement *domain.RefreshToken) (revoked int64, err error)
}

type GormRefreshTokenRepository struct{ db *gorm.DB }

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Create(token *domain.RefreshToken) error {
	return r.db.Create(token).Error
}

func (r *GormRefreshTokenRepository) FindActiveByHash(hash string, now time.Time) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.Where("token_hash = ? AND revoked = ? AND expires_at > ?", hash, false, now).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormRefreshTokenRepository) RevokeByHash(hash string) (int64, error) {
	res := r.db.Model(&domain.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Update("revoked", true)
	return res.RowsAffected, res.Error
}

func (r *GormRefreshTokenRepository) RevokeAllByUser(userID string) error {
	return r.db.Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *GormRefreshTokenRepository) Rotate(oldHash string, replacement *domain.RefreshToken) (int64, error) {
	var revoked int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.RefreshToken{}).
			Where("token_hash = ? AND revoked = ?", oldHash, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		revoked = res.RowsAffected
		return tx.Create(replacement).Error
	})
	if err != nil {
		return 0, err
	}
	return revoked, nil
}
