package models

import (
	"time"
)

// PostRead records that a user has opened a post. At most one row per
// (post, user) pair; duplicate inserts are ignored, never treated as errors.
// Rows are never updated or deleted; a marker whose post is gone is simply
// never selected again.
type PostRead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
