package model

import "time"

// AIRole is a reusable persona: the system prompt a conversation is bound to.
// Rows are reference data seeded from assets/roles.json.
type AIRole struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	ShortDescription string    `gorm:"type:text" json:"short_description"`
	LongDescription  string    `gorm:"type:text" json:"long_description"`
	SystemPrompt     string    `gorm:"type:text;not null" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
