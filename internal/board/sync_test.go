package board

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakePostStore keeps records newest-first, matching the List ordering the
// synchronizer relies on.
type fakePostStore struct {
	records   []PostRecord
	nextID    int
	listErr   error
	createErr error
	deleteErr error
}

func (f *fakePostStore) List() ([]PostRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]PostRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakePostStore) Create(authorID uint, title, body string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	rec := PostRecord{
		Pid:       fmt.Sprintf("pid-%d", f.nextID),
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
	f.records = append([]PostRecord{rec}, f.records...)
	return nil
}

func (f *fakePostStore) UpdateContent(pid, title, body string) error {
	for i := range f.records {
		if f.records[i].Pid == pid {
			f.records[i].Title = title
			f.records[i].Body = body
			return nil
		}
	}
	return errors.New("no such post")
}

func (f *fakePostStore) Delete(pid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.records {
		if f.records[i].Pid == pid {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return errors.New("no such post")
}

func (f *fakePostStore) IncrementViews(pid string) error {
	for i := range f.records {
		if f.records[i].Pid == pid {
			f.records[i].Views++
			return nil
		}
	}
	return errors.New("no such post")
}

type fakeReadStore struct {
	marks   map[string]map[uint]bool
	readErr error
	markErr error
}

func newFakeReadStore() *fakeReadStore {
	return &fakeReadStore{marks: map[string]map[uint]bool{}}
}

func (f *fakeReadStore) ReadSet(userID uint, pids []string) (map[string]bool, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := map[string]bool{}
	for _, pid := range pids {
		if f.marks[pid][userID] {
			out[pid] = true
		}
	}
	return out, nil
}

func (f *fakeReadStore) MarkRead(pid string, userID uint) (MarkResult, error) {
	if f.markErr != nil {
		return MarkAlreadyExists, f.markErr
	}
	if f.marks[pid] == nil {
		f.marks[pid] = map[uint]bool{}
	}
	if f.marks[pid][userID] {
		return MarkAlreadyExists, nil
	}
	f.marks[pid][userID] = true
	return MarkInserted, nil
}

// fakeObjects records uploads and serves deterministic public URLs.
type fakeObjects struct {
	uploads  map[string][]byte
	types    map[string]string
	failMime string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Upload(key string, data []byte, contentType string, overwrite bool) error {
	if f.failMime != "" && contentType == f.failMime {
		return errors.New("upload rejected")
	}
	f.uploads[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://files.test/storage/v1/object/public/images/" + key
}

func seedPosts(n int) *fakePostStore {
	posts := &fakePostStore{}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := n; i >= 1; i-- {
		posts.records = append(posts.records, PostRecord{
			Pid:       fmt.Sprintf("pid-%d", i),
			Title:     fmt.Sprintf("공지 %d", i),
			Body:      "<p>본문</p>",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	posts.nextID = n
	return posts
}

func newTestSync(posts *fakePostStore, reads *fakeReadStore) *Synchronizer {
	return NewSynchronizer(posts, reads, newFakeObjects(), 7, "group-1")
}

func TestOpenIsIdempotent(t *testing.T) {
	posts := seedPosts(2)
	reads := newFakeReadStore()
	s := newTestSync(posts, reads)
	s.Reload()

	first, err := s.Open(1)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !first.IsRead {
		t.Error("Expected notice to be read after open")
	}
	if first.Views != 1 {
		t.Errorf("Expected 1 view after first open, got %d", first.Views)
	}
	if s.State() != StateViewing {
		t.Errorf("Expected viewing state, got %s", s.State())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Second open of the same notice must not add another view.
	second, err := s.Open(1)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	if second.Views != 1 {
		t.Errorf("Expected views to stay at 1, got %d", second.Views)
	}
	if posts.records[0].Views != 1 {
		t.Errorf("Expected stored views 1, got %d", posts.records[0].Views)
	}
}

func TestOpenSurvivesMarkerFailure(t *testing.T) {
	posts := seedPosts(1)
	reads := newFakeReadStore()
	reads.markErr = errors.New("db down")
	s := newTestSync(posts, reads)
	s.Reload()

	notice, err := s.Open(1)
	if err != nil {
		t.Fatalf("Open should succeed despite marker failure: %v", err)
	}
	if !notice.IsRead {
		t.Error("Expected local read flag set even when the marker insert failed")
	}
	if notice.Views != 0 {
		t.Errorf("Expected no view increment on marker failure, got %d", notice.Views)
	}
}

func TestReloadMergesReadMarkers(t *testing.T) {
	posts := seedPosts(3)
	reads := newFakeReadStore()
	reads.marks["pid-2"] = map[uint]bool{7: true}
	s := newTestSync(posts, reads)

	items := s.Reload()
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	for _, n := range items {
		want := n.Pid == "pid-2"
		if n.IsRead != want {
			t.Errorf("Pid %s: expected IsRead=%v, got %v", n.Pid, want, n.IsRead)
		}
	}
	// Newest first, numbered from 1.
	if items[0].Pid != "pid-3" || items[0].LocalID != 1 {
		t.Errorf("Expected pid-3 at position 1, got %s at %d", items[0].Pid, items[0].LocalID)
	}
}

func TestReloadFailsSoft(t *testing.T) {
	posts := seedPosts(2)
	posts.listErr = errors.New("connection refused")
	s := newTestSync(posts, newFakeReadStore())

	items := s.Reload()
	if len(items) != 0 {
		t.Errorf("Expected empty list on fetch failure, got %d items", len(items))
	}
}

func TestReloadWithoutMarkersStillListsPosts(t *testing.T) {
	posts := seedPosts(2)
	reads := newFakeReadStore()
	reads.marks["pid-1"] = map[uint]bool{7: true}
	reads.readErr = errors.New("markers unavailable")
	s := newTestSync(posts, reads)

	items := s.Reload()
	if len(items) != 2 {
		t.Fatalf("Expected posts despite marker failure, got %d", len(items))
	}
	for _, n := range items {
		if n.IsRead {
			t.Errorf("Pid %s: expected unread when markers are unavailable", n.Pid)
		}
	}
}

func TestCreateFlow(t *testing.T) {
	posts := seedPosts(1)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if err := s.StartCreating(); err != nil {
		t.Fatalf("StartCreating failed: %v", err)
	}
	notice, err := s.Create(Draft{Title: "3월 정기모임 안내", Body: "<p>내용</p>"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if notice.LocalID != 1 {
		t.Errorf("Expected new notice at position 1, got %d", notice.LocalID)
	}
	if notice.Title != "3월 정기모임 안내" {
		t.Errorf("Unexpected title: %s", notice.Title)
	}
	if !notice.IsRead {
		t.Error("Expected author's own notice to be marked read")
	}
	if s.State() != StateViewing {
		t.Errorf("Expected viewing state after create, got %s", s.State())
	}
	if len(s.Items()) != 2 {
		t.Errorf("Expected 2 items after create, got %d", len(s.Items()))
	}
}

func TestCreatePersistFailureLeavesListUntouched(t *testing.T) {
	posts := seedPosts(2)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()
	before := s.Items()

	if err := s.StartCreating(); err != nil {
		t.Fatalf("StartCreating failed: %v", err)
	}
	posts.createErr = errors.New("insert failed")
	if _, err := s.Create(Draft{Title: "실패", Body: ""}); err == nil {
		t.Fatal("Expected create error")
	}

	after := s.Items()
	if len(after) != len(before) {
		t.Errorf("Expected list untouched, had %d now %d", len(before), len(after))
	}
	if s.State() != StateCreating {
		t.Errorf("Expected state to remain creating, got %s", s.State())
	}
}

func TestUpdatePatchesInPlace(t *testing.T) {
	posts := seedPosts(3)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if _, err := s.Open(2); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.StartEditing(); err != nil {
		t.Fatalf("StartEditing failed: %v", err)
	}
	notice, err := s.Update(Draft{Title: "수정된 제목", Body: "<p>수정</p>"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if notice.Title != "수정된 제목" {
		t.Errorf("Unexpected title: %s", notice.Title)
	}
	if notice.LocalID != 2 {
		t.Errorf("Expected position to survive the edit, got %d", notice.LocalID)
	}
	if s.State() != StateViewing {
		t.Errorf("Expected viewing after update, got %s", s.State())
	}
	if len(s.Items()) != 3 {
		t.Errorf("Expected item count unchanged, got %d", len(s.Items()))
	}
}

func TestDeleteRenumbersSurvivors(t *testing.T) {
	posts := seedPosts(5)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if _, err := s.Open(3); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	yes := ConfirmerFunc(func(string) bool { return true })
	if err := s.Delete(yes); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	items := s.Items()
	if len(items) != 4 {
		t.Fatalf("Expected 4 items after delete, got %d", len(items))
	}
	for i, n := range items {
		if n.LocalID != i+1 {
			t.Errorf("Position %d: expected local id %d, got %d", i, i+1, n.LocalID)
		}
		if n.Pid == "pid-3" {
			t.Error("Deleted notice still present")
		}
	}
	if s.State() != StateListing {
		t.Errorf("Expected listing after delete, got %s", s.State())
	}
}

func TestDeleteDeclinedKeepsEverything(t *testing.T) {
	posts := seedPosts(3)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if _, err := s.Open(1); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	no := ConfirmerFunc(func(string) bool { return false })
	err := s.Delete(no)
	if !errors.Is(err, ErrConfirmationDeclined) {
		t.Fatalf("Expected ErrConfirmationDeclined, got %v", err)
	}
	if len(posts.records) != 3 {
		t.Errorf("Expected store untouched, got %d records", len(posts.records))
	}
	if s.State() != StateViewing {
		t.Errorf("Expected to stay in viewing, got %s", s.State())
	}
}

func TestUpdateAfterShrinkingReload(t *testing.T) {
	posts := seedPosts(5)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if _, err := s.Open(5); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Another writer removed posts; a list refresh lands while the detail
	// view is still open.
	posts.records = posts.records[:1]
	s.Reload()

	if err := s.StartEditing(); err != nil {
		t.Fatalf("StartEditing failed: %v", err)
	}
	if _, err := s.Update(Draft{Title: "수정", Body: ""}); !errors.Is(err, ErrNoticeNotFound) {
		t.Errorf("Expected ErrNoticeNotFound for a vanished notice, got %v", err)
	}
}

func TestDeleteAfterShrinkingReload(t *testing.T) {
	posts := seedPosts(5)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if _, err := s.Open(5); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	posts.records = posts.records[:1]
	s.Reload()

	yes := ConfirmerFunc(func(string) bool { return true })
	if err := s.Delete(yes); !errors.Is(err, ErrNoticeNotFound) {
		t.Errorf("Expected ErrNoticeNotFound for a vanished notice, got %v", err)
	}
	if len(posts.records) != 1 {
		t.Errorf("Expected store untouched, got %d records", len(posts.records))
	}
}

// gatedPostStore blocks each List call on its own gate so a test can decide
// which of two overlapping reloads finishes first.
type gatedPostStore struct {
	*fakePostStore
	gates   []chan struct{}
	started chan int
	calls   int
}

func (g *gatedPostStore) List() ([]PostRecord, error) {
	idx := g.calls
	g.calls++
	g.started <- idx
	if idx < len(g.gates) {
		<-g.gates[idx]
	}
	return g.fakePostStore.List()
}

func TestOverlappingReloadsKeepLatest(t *testing.T) {
	posts := seedPosts(3)
	g := &gatedPostStore{
		fakePostStore: posts,
		gates:         []chan struct{}{make(chan struct{}), make(chan struct{})},
		started:       make(chan int, 2),
	}
	s := NewSynchronizer(g, newFakeReadStore(), newFakeObjects(), 7, "group-1")

	results := make(chan []Notice, 2)
	go func() { results <- s.Reload() }()
	<-g.started // first reload holds its token and sits in List

	go func() { results <- s.Reload() }()
	<-g.started

	// The later reload completes first against the full store.
	close(g.gates[1])
	newer := <-results
	if len(newer) != 3 {
		t.Fatalf("Expected 3 items from the later reload, got %d", len(newer))
	}

	// The overtaken reload now sees a shrunk store; its result must not
	// replace the later one.
	posts.records = posts.records[:1]
	close(g.gates[0])
	<-results

	if got := len(s.Items()); got != 3 {
		t.Errorf("Expected the overtaken reload discarded, list has %d items", got)
	}
}

func TestStateTransitions(t *testing.T) {
	posts := seedPosts(2)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if err := s.StartEditing(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("StartEditing from listing: expected ErrBadTransition, got %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("Close from listing: expected ErrBadTransition, got %v", err)
	}

	if _, err := s.Open(1); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.Open(2); !errors.Is(err, ErrBadTransition) {
		t.Errorf("Open while viewing: expected ErrBadTransition, got %v", err)
	}
	if err := s.StartCreating(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("StartCreating while viewing: expected ErrBadTransition, got %v", err)
	}

	if err := s.StartEditing(); err != nil {
		t.Fatalf("StartEditing failed: %v", err)
	}
	if err := s.CancelEditing(); err != nil {
		t.Fatalf("CancelEditing failed: %v", err)
	}
	if s.State() != StateViewing {
		t.Errorf("Expected viewing after cancel, got %s", s.State())
	}
}

func TestOpenUnknownNotice(t *testing.T) {
	posts := seedPosts(1)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if _, err := s.Open(99); !errors.Is(err, ErrNoticeNotFound) {
		t.Errorf("Expected ErrNoticeNotFound, got %v", err)
	}
	if s.State() != StateListing {
		t.Errorf("Expected to stay in listing, got %s", s.State())
	}
}

func TestPageResetsOnlyWhenLengthChanges(t *testing.T) {
	posts := seedPosts(25)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	s.SetPage(3)
	s.Reload()
	if s.Page() != 3 {
		t.Errorf("Expected page kept at 3 for same-length reload, got %d", s.Page())
	}

	posts.records = posts.records[1:]
	s.Reload()
	if s.Page() != 1 {
		t.Errorf("Expected page reset to 1 after length change, got %d", s.Page())
	}
}

func TestCreateNormalizesInlineImages(t *testing.T) {
	posts := seedPosts(0)
	s := newTestSync(posts, newFakeReadStore())
	s.Reload()

	if err := s.StartCreating(); err != nil {
		t.Fatalf("StartCreating failed: %v", err)
	}
	body := `<p>사진</p><img src="data:image/png;base64,aGVsbG8=">`
	notice, err := s.Create(Draft{Title: "사진 공지", Body: body})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if strings.Contains(notice.Content, "data:image/") {
		t.Errorf("Expected inline image externalized, got %q", notice.Content)
	}
	if !strings.Contains(notice.Content, "/storage/v1/object/public/") {
		t.Errorf("Expected public URL in content, got %q", notice.Content)
	}
	if !strings.Contains(posts.records[0].Body, "/storage/v1/object/public/") {
		t.Errorf("Expected externalized body persisted, got %q", posts.records[0].Body)
	}
}
