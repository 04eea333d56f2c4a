package model

import "time"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message rows are append-only; nothing mutates a message after creation.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	Role           string    `gorm:"size:16;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
