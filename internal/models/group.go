package models

import (
	"time"
)

type GroupStatus string

const (
	GroupStatusRecruiting GroupStatus = "recruiting"
	GroupStatusUpcoming   GroupStatus = "upcoming"
	GroupStatusClosed     GroupStatus = "closed"
)

// Duration buckets shown on the landing page: one-day meetups,
// short-term (weeks) and long-term (months) groups.
const (
	DurationOneday = "oneday"
	DurationShort  = "short"
	DurationLong   = "long"
)

type Group struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Gid         string      `gorm:"uniqueIndex;size:36;not null" json:"gid"`
	OwnerID     uint        `gorm:"not null;index" json:"owner_id"`
	Owner       User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner"`
	CategoryID  uint        `gorm:"not null;index;default:1" json:"category_id"`
	Category    Category    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	SubCategory string      `gorm:"size:50" json:"sub_category"`
	Title       string      `gorm:"not null" json:"title"`
	Summary     string      `gorm:"size:200" json:"summary"`
	Description string      `gorm:"type:text" json:"description"` // Markdown
	Region      string      `gorm:"size:50" json:"region"`
	Duration    string      `gorm:"size:10;default:'short'" json:"duration"`
	Status      GroupStatus `gorm:"size:20;default:'recruiting'" json:"status"`
	Capacity    int         `gorm:"default:10" json:"capacity"`
	Thumbnail   string      `json:"thumbnail"` // storage key or absolute URL
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Filled on query, not stored
	MemberCount int `gorm:"-" json:"member_count"`
}
