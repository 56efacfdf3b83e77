package domain

import "time"

// User is the identity record. PasswordHash is nil for OAuth-only
// accounts; Email is stored lowercased.
type User struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Email           string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name            string    `gorm:"size:255" json:"name"`
	PasswordHash    *string   `gorm:"size:255" json:"-"`
	AvatarURL       string    `gorm:"size:1024" json:"avatar_url,omitempty"`
	Role            string    `gorm:"size:32;not null;default:user" json:"role"`
	IsEmailVerified bool      `gorm:"not null;default:false" json:"isEmailVerified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PublicUser is the shape returned to clients on auth responses.
type PublicUser struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, IsEmailVerified: u.IsEmailVerified}
}
