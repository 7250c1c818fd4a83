package models

import (
	"time"
)

const (
	MemberRoleHost   = "host"
	MemberRoleMember = "member"
)

// GroupMember links a user to a group. The host is the privileged member
// allowed to author, edit and delete board posts.
type GroupMember struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GroupID    uint      `gorm:"not null;index;uniqueIndex:idx_group_user" json:"group_id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_group_user" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	MemberRole string    `gorm:"size:20;default:'member';not null" json:"member_role"`
	CreatedAt  time.Time `json:"created_at"`
}
