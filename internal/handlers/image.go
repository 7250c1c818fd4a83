package handlers

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"moimlink/internal/board"
	"moimlink/internal/db"
	"moimlink/internal/middleware"
	"moimlink/internal/models"
	"moimlink/internal/storage"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20 // 5MB

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type ImageHandler struct {
	objects storage.ObjectStore
}

func NewImageHandler(objects storage.ObjectStore) *ImageHandler {
	return &ImageHandler{objects: objects}
}

// Upload receives a multipart image, stores it under the group's key space
// and returns the public URL (POST /api/groups/:gid/images).
func (h *ImageHandler) Upload(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	gid := c.Param("gid")

	var group models.Group
	if err := db.DB.Where("gid = ?", gid).First(&group).Error; err != nil {
		JSONError(c, http.StatusNotFound, "group not found")
		return
	}
	if !isHost(group.ID, user.ID) {
		JSONError(c, http.StatusForbidden, "only the host can upload images")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		JSONError(c, http.StatusBadRequest, "image file is required")
		return
	}
	if fileHeader.Size > maxImageSize {
		JSONError(c, http.StatusBadRequest, "이미지는 5MB 이하만 업로드할 수 있습니다.")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		// Fall back to the filename when the browser sent a generic type.
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
		if ext != "jpg" && ext != "jpeg" && ext != "png" && ext != "gif" && ext != "webp" {
			JSONError(c, http.StatusBadRequest, "지원하지 않는 이미지 형식입니다.")
			return
		}
		contentType = "image/" + ext
	}

	file, err := fileHeader.Open()
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil || int64(len(data)) > maxImageSize {
		JSONError(c, http.StatusBadRequest, "failed to read upload")
		return
	}

	key := storage.BuildKey(board.KeyPrefix, group.Gid, ext)
	if err := h.objects.Upload(key, data, contentType, false); err != nil {
		log.Printf("[BOARD] image upload failed (group=%s): %v", gid, err)
		JSONError(c, http.StatusInternalServerError, "이미지 업로드에 실패했습니다.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key": key,
		"url": h.objects.PublicURL(key),
	})
}
