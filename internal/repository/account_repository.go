package repository

import (
	"errors"

	"github.com/authhybrid/backend/internal/domain"

	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(account *domain.Account) error
	FindByUserProvider(userID, provider string) (*domain.Account, error)
	// EnsureLink creates the provider link if the user does not have
	// one yet; existing links are left untouched.
	EnsureLink(userID, provider, providerAccountID string) error
}

type GormAccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &GormAccountRepository{db: db} }

func (r *GormAccountRepository) Create(account *domain.Account) error {
	return r.db.Create(account).Error
}

func (r *GormAccountRepository) FindByUserProvider(userID, provider string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAccountRepository) EnsureLink(userID, provider, providerAccountID string) error {
	_, err := r.FindByUserProvider(userID, provider)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.Create(&domain.Account{
		UserID:            userID,
		Provider:          provider,
		ProviderAccountID: providerAccountID,
	})
}
