package models

import (
	"time"
)

// GroupFavorite 즐겨찾기 - a user starring a group on the landing page
type GroupFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID   uint      `gorm:"not null;index;uniqueIndex:idx_user_group" json:"group_id"`
	Group     Group     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"group"`
	CreatedAt time.Time `json:"created_at"`
}
