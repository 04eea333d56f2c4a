package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	MemoryUUID   string    `gorm:"size:36;not null;uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns the stable identity used for memory partitioning.
// It never changes after the user row exists.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.MemoryUUID == "" {
		u.MemoryUUID = uuid.NewString()
	}
	return nil
}
