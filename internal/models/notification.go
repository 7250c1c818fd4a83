package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReviewLike    NotificationType = "review_like"
	NotificationTypePostLike      NotificationType = "post_like"
	NotificationTypeInquiry       NotificationType = "inquiry"
	NotificationTypeInquiryReply  NotificationType = "inquiry_reply"
	NotificationTypeGroupApproved NotificationType = "group_approved"
	NotificationTypeNotice        NotificationType = "notice"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	GroupID   *uint            `gorm:"index" json:"group_id"`  // related group, optional
	TargetID  *uint            `json:"target_id"`              // post, inquiry, review...
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
