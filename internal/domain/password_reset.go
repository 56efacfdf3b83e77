package domain

import "time"

// PasswordReset is a single-use reset token row. Requesting a new
// token marks every prior unused row used, so at most one can be
// consumed at any time.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenHash string    `gorm:"size:64;not null;index" json:"-"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	UserAgent string    `gorm:"size:512" json:"user_agent,omitempty"`
	IPAddress string    `gorm:"size:64" json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
