package handlers

import (
	"net/http"

	"moimlink/internal/db"
	"moimlink/internal/models"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List returns every category for the wizard's pickers (GET /api/categories).
func (h *CategoryHandler) List(c *gin.Context) {
	var categories []models.Category
	db.DB.Order("id ASC").Find(&categories)

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
