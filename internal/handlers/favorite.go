package handlers

import (
	"net/http"

	"moimlink/internal/db"
	"moimlink/internal/middleware"
	"moimlink/internal/models"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct{}

func NewFavoriteHandler() *FavoriteHandler {
	return &FavoriteHandler{}
}

// Toggle stars or unstars a group (POST /api/groups/:gid/favorite).
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	gid := c.Param("gid")

	var group models.Group
	if err := db.DB.Where("gid = ?", gid).First(&group).Error; err != nil {
		JSONError(c, http.StatusNotFound, "group not found")
		return
	}

	favorited := false
	var existing models.GroupFavorite
	if err := db.DB.Where("user_id = ? AND group_id = ?", user.ID, group.ID).First(&existing).Error; err == nil {
		db.DB.Delete(&existing)
	} else {
		favorite := models.GroupFavorite{
			UserID:  user.ID,
			GroupID: group.ID,
		}
		db.DB.Create(&favorite)
		favorited = true
	}

	var count int64
	db.DB.Model(&models.GroupFavorite{}).Where("group_id = ?", group.ID).Count(&count)

	c.JSON(http.StatusOK, gin.H{"favorited": favorited, "count": count})
}

// Mine lists the caller's starred groups (GET /api/favorites).
func (h *FavoriteHandler) Mine(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var favorites []models.GroupFavorite
	db.DB.Preload("Group").Preload("Group.Category").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&favorites)

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}
