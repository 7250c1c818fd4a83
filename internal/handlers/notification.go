package handlers

import (
	"net/http"

	"moimlink/internal/db"
	"moimlink/internal/middleware"
	"moimlink/internal/models"
	"moimlink/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List returns the caller's latest notifications (GET /api/notifications).
func (h *NotificationHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var notifications []models.Notification
	db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications)

	var unread int64
	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// Read marks one notification read (POST /api/notifications/:id/read).
func (h *NotificationHandler) Read(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	res := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_read", true)
	if res.RowsAffected == 0 {
		JSONError(c, http.StatusNotFound, "notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// ReadAll marks every unread notification read (POST /api/notifications/read-all).
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// Delete removes one notification (DELETE /api/notifications/:id).
func (h *NotificationHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	res := db.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Notification{})
	if res.RowsAffected == 0 {
		JSONError(c, http.StatusNotFound, "notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
