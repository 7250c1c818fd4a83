package board

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"moimlink/internal/storage"
)

// Notice is the per-user projection of a post the UI consumes.
type Notice struct {
	LocalID int    `json:"id"` // 1-based display position
	Pid     string `json:"post_id"`
	Title   string `json:"title"`
	Content string `json:"content"` // image refs resolved to public URLs
	Date    string `json:"date"`    // YYYY-MM-DD
	IsRead  bool   `json:"is_read"`
	Views   int    `json:"views"`
}

// State is the client-observable board state. All transitions are explicit;
// there are no implicit timeouts.
type State string

const (
	StateListing  State = "listing"
	StateCreating State = "creating"
	StateViewing  State = "viewing"
	StateEditing  State = "editing"
)

var (
	// ErrConfirmationDeclined is a normal early exit from Delete, not a failure.
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrNoticeNotFound       = errors.New("notice not found")
	ErrBadTransition        = errors.New("operation not allowed in current state")
)

// Draft is the user-authored part of a post.
type Draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Synchronizer keeps the per-user view of one group board consistent with the
// shared post list: it merges posts with the user's read markers, performs
// idempotent mark-as-read transitions with at-most-once view increments, and
// patches the in-memory list after local mutations instead of reloading.
//
// A mutex serializes operations; overlapping Reloads are resolved by a
// monotonically increasing token so only the latest issued reload may apply
// its result.
type Synchronizer struct {
	mu      sync.Mutex
	posts   PostStore
	reads   ReadStore
	objects storage.ObjectStore

	userID   uint
	groupGid string

	items     []Notice
	page      int
	state     State
	detailIdx int

	reloadSeq uint64
}

func NewSynchronizer(posts PostStore, reads ReadStore, objects storage.ObjectStore, userID uint, groupGid string) *Synchronizer {
	return &Synchronizer{
		posts:     posts,
		reads:     reads,
		objects:   objects,
		userID:    userID,
		groupGid:  groupGid,
		items:     []Notice{},
		page:      1,
		state:     StateListing,
		detailIdx: -1,
	}
}

// Reload fetches the board from the stores and replaces the in-memory list.
// Fetch failures are logged and yield an empty list; the read path fails
// soft and the caller decides how to surface it. A reload that was overtaken
// by a later one discards its result.
func (s *Synchronizer) Reload() []Notice {
	s.mu.Lock()
	s.reloadSeq++
	token := s.reloadSeq
	s.mu.Unlock()

	items := s.fetch()

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.reloadSeq {
		// A newer reload was issued while this one was in flight.
		return items
	}
	s.setItems(items)
	return items
}

func (s *Synchronizer) fetch() []Notice {
	records, err := s.posts.List()
	if err != nil {
		log.Printf("[BOARD] reload failed (group=%s): %v", s.groupGid, err)
		return []Notice{}
	}

	pids := make([]string, len(records))
	for i, r := range records {
		pids[i] = r.Pid
	}

	readSet := map[string]bool{}
	if len(pids) > 0 {
		if rs, err := s.reads.ReadSet(s.userID, pids); err != nil {
			// Markers stay absent; the posts themselves still render.
			log.Printf("[BOARD] read markers unavailable (group=%s): %v", s.groupGid, err)
		} else {
			readSet = rs
		}
	}

	resolver := Resolver{Objects: s.objects}
	items := make([]Notice, len(records))
	for i, r := range records {
		items[i] = Notice{
			LocalID: i + 1,
			Pid:     r.Pid,
			Title:   r.Title,
			Content: resolver.ResolveAllImageSrc(r.Body, s.groupGid),
			Date:    r.CreatedAt.Format("2006-01-02"),
			IsRead:  readSet[r.Pid],
			Views:   r.Views,
		}
	}
	return items
}

// setItems replaces the list and resets to page 1 when the length changed
// (covers create/delete, not edit). A detail index past the end of the new
// list is invalidated so a stale Viewing/Editing session cannot reach a
// removed entry. Callers must hold the mutex.
func (s *Synchronizer) setItems(items []Notice) {
	if len(items) != len(s.items) {
		s.page = 1
	}
	if s.detailIdx >= len(items) {
		s.detailIdx = -1
	}
	s.items = items
}

// Open marks the notice as read for the current user and transitions to
// Viewing. Only an insert that actually created a marker increments the view
// count, so each user contributes at most one view per post no matter how
// often they open it.
func (s *Synchronizer) Open(localID int) (Notice, error) {
	s.mu.Lock()
	if s.state != StateListing {
		s.mu.Unlock()
		return Notice{}, ErrBadTransition
	}
	idx := s.indexOf(localID)
	if idx < 0 {
		s.mu.Unlock()
		return Notice{}, ErrNoticeNotFound
	}
	target := s.items[idx]
	s.mu.Unlock()

	result, err := s.reads.MarkRead(target.Pid, s.userID)
	if err != nil {
		// The post still opens; the marker is retried on the next open.
		log.Printf("[BOARD] mark read failed (pid=%s): %v", target.Pid, err)
		result = MarkAlreadyExists
	}
	if result == MarkInserted {
		if err := s.posts.IncrementViews(target.Pid); err != nil {
			log.Printf("[BOARD] view increment failed (pid=%s): %v", target.Pid, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexOf(localID)
	if idx < 0 {
		return Notice{}, ErrNoticeNotFound
	}
	s.items[idx].IsRead = true
	if result == MarkInserted {
		s.items[idx].Views++
	}
	s.state = StateViewing
	s.detailIdx = idx
	return s.items[idx], nil
}

// Create runs the draft body through externalization and resolution, persists
// it, reloads to pick up the server-assigned id and timestamp, then marks the
// newest entry read. A persist failure leaves the list unmodified.
func (s *Synchronizer) Create(draft Draft) (Notice, error) {
	s.mu.Lock()
	if s.state != StateCreating {
		s.mu.Unlock()
		return Notice{}, ErrBadTransition
	}
	s.mu.Unlock()

	body := s.normalizeBody(draft.Body)
	if err := s.posts.Create(s.userID, draft.Title, body); err != nil {
		return Notice{}, fmt.Errorf("create post: %w", err)
	}

	list := s.Reload()

	s.mu.Lock()
	s.state = StateListing
	s.page = 1
	s.detailIdx = -1
	s.mu.Unlock()

	if len(list) == 0 {
		return Notice{}, nil
	}
	// Newest first: the reload ordering invariant identifies our post.
	return s.Open(list[0].LocalID)
}

// Update persists a title/body edit of the currently viewed notice and
// patches the in-memory entry without a full reload. Timestamps and the view
// count are untouched.
func (s *Synchronizer) Update(draft Draft) (Notice, error) {
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return Notice{}, ErrBadTransition
	}
	idx := s.detailIdx
	if idx < 0 || idx >= len(s.items) {
		// A reload shrank the list while this notice was open.
		s.mu.Unlock()
		return Notice{}, ErrNoticeNotFound
	}
	target := s.items[idx]
	s.mu.Unlock()

	body := s.normalizeBody(draft.Body)
	if err := s.posts.UpdateContent(target.Pid, draft.Title, body); err != nil {
		return Notice{}, fmt.Errorf("update post: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexOfPid(target.Pid)
	if idx < 0 {
		return Notice{}, ErrNoticeNotFound
	}
	s.items[idx].Title = draft.Title
	s.items[idx].Content = body
	s.state = StateViewing
	s.detailIdx = idx
	return s.items[idx], nil
}

// Delete removes the currently viewed notice after the confirmer agrees.
// Remaining entries are renumbered contiguously from 1.
func (s *Synchronizer) Delete(confirm Confirmer) error {
	s.mu.Lock()
	if s.state != StateViewing {
		s.mu.Unlock()
		return ErrBadTransition
	}
	idx := s.detailIdx
	if idx < 0 || idx >= len(s.items) {
		// A reload shrank the list while this notice was open.
		s.mu.Unlock()
		return ErrNoticeNotFound
	}
	target := s.items[idx]
	s.mu.Unlock()

	if confirm == nil || !confirm.Confirm("Delete this notice?") {
		return ErrConfirmationDeclined
	}

	if err := s.posts.Delete(target.Pid); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rest := make([]Notice, 0, len(s.items))
	for _, n := range s.items {
		if n.Pid == target.Pid {
			continue
		}
		n.LocalID = len(rest) + 1
		rest = append(rest, n)
	}
	s.setItems(rest)
	s.state = StateListing
	s.detailIdx = -1
	return nil
}

func (s *Synchronizer) normalizeBody(body string) string {
	cleaned := Externalizer{Objects: s.objects}.ExternalizeInlineImages(body, s.groupGid)
	return Resolver{Objects: s.objects}.ResolveAllImageSrc(cleaned, s.groupGid)
}

// indexOf must be called with the mutex held.
func (s *Synchronizer) indexOf(localID int) int {
	for i, n := range s.items {
		if n.LocalID == localID {
			return i
		}
	}
	return -1
}

// indexOfPid must be called with the mutex held.
func (s *Synchronizer) indexOfPid(pid string) int {
	for i, n := range s.items {
		if n.Pid == pid {
			return i
		}
	}
	return -1
}

// StartCreating enters the create form. Allowed from Listing only.
func (s *Synchronizer) StartCreating() error {
	return s.transition(StateListing, StateCreating)
}

// CancelCreating returns to the list without persisting anything.
func (s *Synchronizer) CancelCreating() error {
	return s.transition(StateCreating, StateListing)
}

// StartEditing enters the edit form for the currently viewed notice.
func (s *Synchronizer) StartEditing() error {
	return s.transition(StateViewing, StateEditing)
}

// CancelEditing returns to viewing without persisting the draft.
func (s *Synchronizer) CancelEditing() error {
	return s.transition(StateEditing, StateViewing)
}

// Close leaves the detail view.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateViewing && s.state != StateEditing {
		return ErrBadTransition
	}
	s.state = StateListing
	s.detailIdx = -1
	return nil
}

func (s *Synchronizer) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return ErrBadTransition
	}
	s.state = to
	return nil
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the notice being viewed or edited.
func (s *Synchronizer) Current() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detailIdx < 0 || s.detailIdx >= len(s.items) {
		return Notice{}, false
	}
	return s.items[s.detailIdx], true
}

// Items returns a copy of the full merged list.
func (s *Synchronizer) Items() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notice, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Synchronizer) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage stores the requested page as-is; clamping is the caller's job.
func (s *Synchronizer) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

func (s *Synchronizer) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPages(len(s.items))
}

// PageItems returns the slice for the current page.
func (s *Synchronizer) PageItems() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pageOf(s.items, s.page)
}
