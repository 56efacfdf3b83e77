package domain

import "time"

// Conversation groups participants for the messaging layer. A 1:1
// conversation (two participants) is deduplicated at creation; groups
// require a title.
type Conversation struct {
	ID           string                    `gorm:"primaryKey;size:36" json:"id"`
	Title        string                    `gorm:"size:255" json:"title,omitempty"`
	IsGroup      bool                      `gorm:"not null;default:false" json:"is_group"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

type ConversationParticipant struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"size:36;not null;uniqueIndex:idx_conversation_user" json:"conversation_id"`
	UserID         string     `gorm:"size:36;not null;uniqueIndex:idx_conversation_user" json:"user_id"`
	JoinedAt       time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty"`
}

type Message struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string    `gorm:"size:36;not null;index:idx_messages_conversation" json:"conversation_id"`
	SenderID       string    `gorm:"size:36;not null" json:"sender_id"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation" json:"created_at"`
}
