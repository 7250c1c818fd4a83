package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"moimlink/internal/board"
	"moimlink/internal/db"
	"moimlink/internal/middleware"
	"moimlink/internal/models"
	"moimlink/internal/services"
	"moimlink/internal/storage"
	"moimlink/internal/utils"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
)

// NoticeHandler exposes the group notice board. Each (user, group, board)
// pair gets its own board.Synchronizer, kept in an LRU so idle sessions age
// out naturally.
type NoticeHandler struct {
	objects     storage.ObjectStore
	mailService *services.MailService
	boards      *lru.Cache[string, *board.Synchronizer]
}

func NewNoticeHandler(objects storage.ObjectStore) *NoticeHandler {
	l, err := lru.New[string, *board.Synchronizer](1024)
	if err != nil {
		log.Fatalf("Failed to create board registry: %v", err)
	}
	return &NoticeHandler{
		objects:     objects,
		mailService: services.NewMailService(),
		boards:      l,
	}
}

func (h *NoticeHandler) lookupGroup(c *gin.Context) (*models.Group, bool) {
	gid := c.Param("gid")
	var group models.Group
	if err := db.DB.Where("gid = ?", gid).First(&group).Error; err != nil {
		JSONError(c, http.StatusNotFound, "group not found")
		return nil, false
	}
	return &group, true
}

func (h *NoticeHandler) sync(c *gin.Context, group *models.Group, user *models.User) *board.Synchronizer {
	boardType := c.DefaultQuery("board", models.BoardTypeNotice)
	key := fmt.Sprintf("%d:%s:%s", user.ID, group.Gid, boardType)
	if s, ok := h.boards.Get(key); ok {
		return s
	}

	posts := &board.GormPostStore{DB: db.DB, GroupID: group.ID, BoardType: boardType}
	reads := &board.GormReadStore{DB: db.DB}
	s := board.NewSynchronizer(posts, reads, h.objects, user.ID, group.Gid)
	h.boards.Add(key, s)
	return s
}

// isHost checks the caller's member role, cached briefly since the board
// asks on every mutating request.
func isHost(groupID, userID uint) bool {
	cacheKey := fmt.Sprintf("member:role:%d:%d", groupID, userID)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.(string) == models.MemberRoleHost
	}

	var member models.GroupMember
	role := ""
	if err := db.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err == nil {
		role = member.MemberRole
	}
	utils.GetCache().Set(cacheKey, role, 1*time.Minute)
	return role == models.MemberRoleHost
}

// List reloads the board and returns the requested page (GET /api/groups/:gid/notices).
func (h *NoticeHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	s := h.sync(c, group, user)

	s.Reload()

	// The projector does not clamp; the caller does.
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	total := s.TotalPages()
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	s.SetPage(page)

	c.JSON(http.StatusOK, gin.H{
		"items":       s.PageItems(),
		"page":        page,
		"total_pages": total,
		"count":       len(s.Items()),
		"state":       s.State(),
		"is_host":     isHost(group.ID, user.ID),
	})
}

// Open marks a notice read and returns it (POST /api/groups/:gid/notices/:id/open).
func (h *NoticeHandler) Open(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	s := h.sync(c, group, user)

	notice, err := s.Open(utils.StringToInt(c.Param("id")))
	if err != nil {
		h.boardError(c, err)
		return
	}

	notice.Content = string(utils.EnhanceHTMLContent(notice.Content))
	c.JSON(http.StatusOK, gin.H{"notice": notice, "state": s.State()})
}

// Close leaves the detail view (POST /api/groups/:gid/notices/close).
func (h *NoticeHandler) Close(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	s := h.sync(c, group, user)

	if err := s.Close(); err != nil {
		h.boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.State()})
}

// Create posts a new notice (POST /api/groups/:gid/notices). Host only.
func (h *NoticeHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	if !isHost(group.ID, user.ID) {
		JSONError(c, http.StatusForbidden, "only the host can post notices")
		return
	}

	var draft board.Draft
	if err := c.ShouldBindJSON(&draft); err != nil || draft.Title == "" {
		JSONError(c, http.StatusBadRequest, "title is required")
		return
	}
	draft.Body = utils.SanitizeBody(draft.Body)

	s := h.sync(c, group, user)
	if s.State() != board.StateCreating {
		if err := s.StartCreating(); err != nil {
			h.boardError(c, err)
			return
		}
	}

	notice, err := s.Create(draft)
	if err != nil {
		// The in-memory list is untouched; tell the user plainly.
		log.Printf("[BOARD] create failed (group=%s): %v", group.Gid, err)
		JSONError(c, http.StatusInternalServerError, "공지 등록에 실패했습니다.")
		return
	}

	go h.notifyMembers(group, user.ID, notice.Title)

	c.JSON(http.StatusCreated, gin.H{"notice": notice, "state": s.State()})
}

// Update edits the currently viewed notice (PUT /api/groups/:gid/notices/:id). Host only.
func (h *NoticeHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	if !isHost(group.ID, user.ID) {
		JSONError(c, http.StatusForbidden, "only the host can edit notices")
		return
	}

	var draft board.Draft
	if err := c.ShouldBindJSON(&draft); err != nil || draft.Title == "" {
		JSONError(c, http.StatusBadRequest, "title is required")
		return
	}
	draft.Body = utils.SanitizeBody(draft.Body)

	s := h.sync(c, group, user)
	if !h.ensureViewing(c, s, utils.StringToInt(c.Param("id"))) {
		return
	}
	if err := s.StartEditing(); err != nil {
		h.boardError(c, err)
		return
	}

	notice, err := s.Update(draft)
	if err != nil {
		log.Printf("[BOARD] update failed (group=%s): %v", group.Gid, err)
		JSONError(c, http.StatusInternalServerError, "공지 수정에 실패했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": notice, "state": s.State()})
}

// Delete removes a notice after explicit confirmation
// (DELETE /api/groups/:gid/notices/:id?confirm=true). Host only.
func (h *NoticeHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	if !isHost(group.ID, user.ID) {
		JSONError(c, http.StatusForbidden, "only the host can delete notices")
		return
	}

	s := h.sync(c, group, user)
	if !h.ensureViewing(c, s, utils.StringToInt(c.Param("id"))) {
		return
	}

	confirm := board.ConfirmerFunc(func(string) bool {
		return c.Query("confirm") == "true"
	})
	err := s.Delete(confirm)
	if errors.Is(err, board.ErrConfirmationDeclined) {
		// Normal early exit, not a failure.
		c.JSON(http.StatusOK, gin.H{"deleted": false, "state": s.State()})
		return
	}
	if err != nil {
		log.Printf("[BOARD] delete failed (group=%s): %v", group.Gid, err)
		JSONError(c, http.StatusInternalServerError, "공지 삭제에 실패했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "state": s.State(), "items": s.PageItems(), "total_pages": s.TotalPages()})
}

// ensureViewing drives the state machine to Viewing(localID) for edit and
// delete requests arriving on a fresh or differently-positioned session.
func (h *NoticeHandler) ensureViewing(c *gin.Context, s *board.Synchronizer, localID int) bool {
	if cur, ok := s.Current(); ok && cur.LocalID == localID && s.State() == board.StateViewing {
		return true
	}
	if s.State() != board.StateListing {
		s.Close()
	}
	if len(s.Items()) == 0 {
		s.Reload()
	}
	if _, err := s.Open(localID); err != nil {
		h.boardError(c, err)
		return false
	}
	return true
}

func (h *NoticeHandler) boardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, board.ErrNoticeNotFound):
		JSONError(c, http.StatusNotFound, "notice not found")
	case errors.Is(err, board.ErrBadTransition):
		JSONError(c, http.StatusConflict, "board is in the wrong state for that")
	default:
		JSONError(c, http.StatusInternalServerError, "board operation failed")
	}
}

// notifyMembers fans a new-notice notification out to every member except
// the author.
func (h *NoticeHandler) notifyMembers(group *models.Group, authorID uint, noticeTitle string) {
	var members []models.GroupMember
	if err := db.DB.Preload("User").Where("group_id = ?", group.ID).Find(&members).Error; err != nil {
		log.Printf("[BOARD] member fanout failed (group=%s): %v", group.Gid, err)
		return
	}

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	link := fmt.Sprintf("%s/share/%s", siteURL, group.Gid)

	for _, m := range members {
		if m.UserID == authorID {
			continue
		}
		groupID := group.ID
		services.InsertNotification(m.UserID, models.NotificationTypeNotice, "새 공지가 등록되었습니다",
			fmt.Sprintf("[%s] %s", group.Title, noticeTitle), &groupID, nil)
		if m.User.Email != "" {
			h.mailService.SendNoticePosted(m.User.Email, group.Title, noticeTitle, link)
		}
	}
}
