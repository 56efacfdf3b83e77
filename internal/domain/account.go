package domain

import "time"

// Account links a User to an external identity provider. One user may
// hold several (credentials, google, github); uniqueness is the
// (provider, provider_account_id) pair. Rows are append-only.
type Account struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            string    `gorm:"size:36;not null;index" json:"user_id"`
	Provider          string    `gorm:"size:32;not null;uniqueIndex:idx_provider_account" json:"provider"`
	ProviderAccountID string    `gorm:"size:255;not null;uniqueIndex:idx_provider_account" json:"provider_account_id"`
	CreatedAt         time.Time `json:"created_at"`
}

const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
	ProviderGitHub      = "github"
)
