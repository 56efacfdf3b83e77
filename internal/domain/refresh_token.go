package domain

import "time"

// RefreshToken holds the server-side half of a refresh secret. Only
// the SHA-256 hash is ever stored; a revoked row is permanently inert
// and rows are never physically deleted (audit trail).
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	UserAgent string    `gorm:"size:512" json:"user_agent,omitempty"`
	IPAddress string    `gorm:"size:64" json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
