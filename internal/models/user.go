package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Nickname    string    `gorm:"not null" json:"nickname"` // Nickname can be modified
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"` // Hash
	AvatarURL   string    `json:"avatar_url"`
	Bio         string    `gorm:"size:200" json:"bio"`
	Region      string    `gorm:"size:50" json:"region"`
	GoogleID    string    `gorm:"index" json:"google_id"`     // Google OAuth ID
	GoogleEmail string    `gorm:"index" json:"google_email"`  // Google account email
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}
