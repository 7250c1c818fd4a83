package board

import (
	"fmt"

	"moimlink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostStore is a PostStore bound to one group and board type.
type GormPostStore struct {
	DB        *gorm.DB
	GroupID   uint
	BoardType string
}

func (s *GormPostStore) List() ([]PostRecord, error) {
	var posts []models.Post
	err := s.DB.
		Where("group_id = ? AND board_type = ?", s.GroupID, s.BoardType).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	records := make([]PostRecord, len(posts))
	for i, p := range posts {
		records[i] = PostRecord{
			Pid:       p.Pid,
			Title:     p.Title,
			Body:      p.Body,
			Views:     p.Views,
			CreatedAt: p.CreatedAt,
		}
	}
	return records, nil
}

func (s *GormPostStore) Create(authorID uint, title, body string) error {
	post := models.Post{
		Pid:       uuid.NewString(),
		GroupID:   s.GroupID,
		UserID:    authorID,
		BoardType: s.BoardType,
		Title:     title,
		Body:      body,
	}
	return s.DB.Create(&post).Error
}

func (s *GormPostStore) UpdateContent(pid, title, body string) error {
	res := s.DB.Model(&models.Post{}).
		Where("pid = ? AND group_id = ?", pid, s.GroupID).
		Updates(map[string]interface{}{"title": title, "body": body})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %s not found", pid)
	}
	return nil
}

func (s *GormPostStore) Delete(pid string) error {
	// Hard delete; orphaned read markers are never selected again.
	return s.DB.Unscoped().
		Where("pid = ? AND group_id = ?", pid, s.GroupID).
		Delete(&models.Post{}).Error
}

func (s *GormPostStore) IncrementViews(pid string) error {
	return s.DB.Model(&models.Post{}).
		Where("pid = ?", pid).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// GormReadStore persists read markers with duplicate-ignore semantics.
type GormReadStore struct {
	DB *gorm.DB
}

func (s *GormReadStore) ReadSet(userID uint, pids []string) (map[string]bool, error) {
	if len(pids) == 0 {
		return map[string]bool{}, nil
	}
	var read []string
	err := s.DB.Model(&models.PostRead{}).
		Joins("JOIN posts ON posts.id = post_reads.post_id").
		Where("post_reads.user_id = ? AND posts.pid IN ?", userID, pids).
		Pluck("posts.pid", &read).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(read))
	for _, pid := range read {
		set[pid] = true
	}
	return set, nil
}

// MarkRead inserts a (post, user) marker, ignoring the duplicate per the
// unique constraint. RowsAffected distinguishes a real insert from a no-op.
func (s *GormReadStore) MarkRead(pid string, userID uint) (MarkResult, error) {
	var post models.Post
	if err := s.DB.Select("id").Where("pid = ?", pid).First(&post).Error; err != nil {
		return MarkAlreadyExists, err
	}

	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostRead{PostID: post.ID, UserID: userID})
	if res.Error != nil {
		return MarkAlreadyExists, res.Error
	}
	if res.RowsAffected == 0 {
		return MarkAlreadyExists, nil
	}
	return MarkInserted, nil
}
