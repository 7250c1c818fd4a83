package services

import (
	"log"

	"moimlink/internal/db"
	"moimlink/internal/models"
)

// InsertNotification writes a notification row for a user. Failures are
// logged, never propagated to the action that triggered the notification.
func InsertNotification(userID uint, typ models.NotificationType, title, message string, groupID, targetID *uint) {
	if userID == 0 {
		return
	}
	notification := models.Notification{
		UserID:   userID,
		Type:     typ,
		Title:    title,
		Message:  message,
		GroupID:  groupID,
		TargetID: targetID,
	}
	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("[NOTIFY] insert failed (user=%d type=%s): %v", userID, typ, err)
	}
}

// InsertNotificationAsync fires the insert off the request path.
func InsertNotificationAsync(userID uint, typ models.NotificationType, title, message string, groupID, targetID *uint) {
	go InsertNotification(userID, typ, title, message, groupID, targetID)
}
