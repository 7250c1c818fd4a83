package handlers

import (
	"net/http"

	"moimlink/internal/db"
	"moimlink/internal/models"
	"moimlink/internal/utils"

	"github.com/gin-gonic/gin"
)

type ShareHandler struct{}

func NewShareHandler() *ShareHandler {
	return &ShareHandler{}
}

// Landing renders the public landing page with the recruiting groups
// grouped by duration (GET /).
func (h *ShareHandler) Landing(c *gin.Context) {
	groups := loadLandingGroups()

	buckets := map[string][]models.Group{}
	for _, g := range groups {
		buckets[g.Duration] = append(buckets[g.Duration], g)
	}

	Render(c, http.StatusOK, "landing.html", gin.H{
		"Title":        "모임링크",
		"OnedayGroups": buckets[models.DurationOneday],
		"ShortGroups":  buckets[models.DurationShort],
		"LongGroups":   buckets[models.DurationLong],
		"GroupCount":   len(groups),
	})
}

// Share renders the public share page for one group, with OpenGraph meta so
// links unfurl in chat apps (GET /share/:gid).
func (h *ShareHandler) Share(c *gin.Context) {
	gid := c.Param("gid")

	var group models.Group
	if err := db.DB.Preload("Owner").Preload("Category").Where("gid = ?", gid).First(&group).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 모임입니다.")
		return
	}

	var memberCount int64
	db.DB.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount)
	group.MemberCount = int(memberCount)

	var noticeCount int64
	db.DB.Model(&models.Post{}).
		Where("group_id = ? AND board_type = ?", group.ID, models.BoardTypeNotice).
		Count(&noticeCount)

	Render(c, http.StatusOK, "share.html", gin.H{
		"Title":       group.Title,
		"Group":       group,
		"Description": utils.RenderMarkdown(group.Description),
		"Dday":        utils.CalcDday(group.StartDate),
		"NoticeCount": noticeCount,
		"OGTitle":     group.Title,
		"OGDesc":      group.Summary,
		"OGImage":     group.Thumbnail,
	})
}
