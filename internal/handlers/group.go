package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"moimlink/internal/db"
	"moimlink/internal/middleware"
	"moimlink/internal/models"
	"moimlink/internal/services"
	"moimlink/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type GroupHandler struct {
	mailService *services.MailService
}

func NewGroupHandler() *GroupHandler {
	return &GroupHandler{
		mailService: services.NewMailService(),
	}
}

type createGroupRequest struct {
	Title       string `json:"title" binding:"required"`
	CategoryID  uint   `json:"category_id"`
	SubCategory string `json:"sub_category"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Region      string `json:"region"`
	Duration    string `json:"duration"`
	Capacity    int    `json:"capacity"`
	Thumbnail   string `json:"thumbnail"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`
}

// Create is the final submit of the create-group wizard (POST /api/groups).
// The creator becomes the group's host.
func (h *GroupHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid group payload")
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		JSONError(c, http.StatusBadRequest, "invalid start date")
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		JSONError(c, http.StatusBadRequest, "invalid end date")
		return
	}
	if endDate.Before(startDate) {
		JSONError(c, http.StatusBadRequest, "end date precedes start date")
		return
	}

	duration := req.Duration
	switch duration {
	case models.DurationOneday, models.DurationShort, models.DurationLong:
	default:
		duration = models.DurationShort
	}

	categoryID := req.CategoryID
	if categoryID == 0 {
		categoryID = 1
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 10
	}

	status := models.GroupStatusRecruiting
	if startDate.After(time.Now().AddDate(0, 1, 0)) {
		status = models.GroupStatusUpcoming
	}

	group := models.Group{
		Gid:         uuid.NewString(),
		OwnerID:     user.ID,
		CategoryID:  categoryID,
		SubCategory: req.SubCategory,
		Title:       req.Title,
		Summary:     req.Summary,
		Description: req.Description,
		Region:      req.Region,
		Duration:    duration,
		Status:      status,
		Capacity:    capacity,
		Thumbnail:   req.Thumbnail,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	if err := db.DB.Create(&group).Error; err != nil {
		log.Printf("[GROUP] create failed (owner=%d): %v", user.ID, err)
		JSONError(c, http.StatusInternalServerError, "모임 등록에 실패했습니다.")
		return
	}

	host := models.GroupMember{
		GroupID:    group.ID,
		UserID:     user.ID,
		MemberRole: models.MemberRoleHost,
	}
	if err := db.DB.Create(&host).Error; err != nil {
		log.Printf("[GROUP] host membership failed (group=%s): %v", group.Gid, err)
	}

	groupID := group.ID
	services.InsertNotificationAsync(user.ID, models.NotificationTypeGroupApproved,
		"🎉 모임이 등록되었습니다!", fmt.Sprintf("'%s' 모임이 등록되었습니다.", group.Title), &groupID, nil)
	h.mailService.SendGroupApproved(user.Email, group.Title, h.shareLink(group.Gid))

	// Landing page lists change
	utils.GetCache().Delete("landing:groups")

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (h *GroupHandler) shareLink(gid string) string {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/share/%s", siteURL, gid)
}

// Detail returns one group with its member count (GET /api/groups/:gid).
func (h *GroupHandler) Detail(c *gin.Context) {
	gid := c.Param("gid")

	var group models.Group
	if err := db.DB.Preload("Owner").Preload("Category").Where("gid = ?", gid).First(&group).Error; err != nil {
		JSONError(c, http.StatusNotFound, "group not found")
		return
	}

	var memberCount int64
	db.DB.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount)
	group.MemberCount = int(memberCount)

	c.JSON(http.StatusOK, gin.H{
		"group":     group,
		"dday":      utils.CalcDday(group.StartDate),
		"share_url": h.shareLink(group.Gid),
	})
}

// List returns recruiting groups for the landing section, optionally
// filtered by duration bucket (GET /api/groups).
func (h *GroupHandler) List(c *gin.Context) {
	duration := c.Query("duration")

	groups := loadLandingGroups()
	if duration != "" {
		filtered := make([]models.Group, 0, len(groups))
		for _, g := range groups {
			if g.Duration == duration {
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// loadLandingGroups fetches the recruiting/upcoming groups shown on the
// landing page, cached for a minute.
func loadLandingGroups() []models.Group {
	if cached := utils.GetCache().Get("landing:groups"); cached != nil {
		if groups, ok := cached.([]models.Group); ok {
			return groups
		}
	}

	var groups []models.Group
	db.DB.Preload("Category").
		Where("status IN ?", []models.GroupStatus{models.GroupStatusRecruiting, models.GroupStatusUpcoming}).
		Order("created_at DESC").
		Limit(60).
		Find(&groups)

	fillMemberCounts(groups)

	utils.GetCache().Set("landing:groups", groups, 1*time.Minute)
	return groups
}

// fillMemberCounts batch-fills MemberCount for a group list.
func fillMemberCounts(groups []models.Group) {
	if len(groups) == 0 {
		return
	}

	groupIDs := make([]uint, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}

	type countResult struct {
		GroupID uint
		Count   int
	}
	var results []countResult
	db.DB.Model(&models.GroupMember{}).
		Select("group_id, COUNT(*) as count").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.GroupID] = r.Count
	}

	for i := range groups {
		groups[i].MemberCount = countMap[groups[i].ID]
	}
}

// Join adds the caller as a member (POST /api/groups/:gid/join). Joining
// twice is a no-op, like any other duplicate-insert in this codebase.
func (h *GroupHandler) Join(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	gid := c.Param("gid")

	var group models.Group
	if err := db.DB.Where("gid = ?", gid).First(&group).Error; err != nil {
		JSONError(c, http.StatusNotFound, "group not found")
		return
	}
	if group.Status != models.GroupStatusRecruiting {
		JSONError(c, http.StatusConflict, "group is not recruiting")
		return
	}

	var memberCount int64
	db.DB.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount)
	if int(memberCount) >= group.Capacity {
		JSONError(c, http.StatusConflict, "group is full")
		return
	}

	member := models.GroupMember{
		GroupID:    group.ID,
		UserID:     user.ID,
		MemberRole: models.MemberRoleMember,
	}
	res := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if res.Error != nil {
		log.Printf("[GROUP] join failed (group=%s user=%d): %v", gid, user.ID, res.Error)
		JSONError(c, http.StatusInternalServerError, "모임 가입에 실패했습니다.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": res.RowsAffected > 0})
}
