package domain

import "time"

// EmailOTP is a one-time email verification code, bcrypt-hashed at
// rest. Attempts only ever grows on failed verification; past the cap
// the record is dead and a fresh code must be requested.
type EmailOTP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index:idx_email_otps_lookup" json:"email"`
	UserID    string    `gorm:"size:36;not null;index:idx_email_otps_lookup" json:"user_id"`
	OTPHash   string    `gorm:"size:255;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}
