package board

import (
	"time"
)

// PostRecord is the store-side shape of a board post. The synchronizer only
// ever sees these, so tests can drive it with in-memory fakes.
type PostRecord struct {
	Pid       string
	Title     string
	Body      string
	Views     int
	CreatedAt time.Time
}

// PostStore is scoped to one (group, board type) pair.
type PostStore interface {
	// List returns the board's posts ordered by creation time descending.
	// The ordering is load-bearing: Create identifies the freshly persisted
	// post as the first element after a reload.
	List() ([]PostRecord, error)
	Create(authorID uint, title, body string) error
	UpdateContent(pid, title, body string) error
	Delete(pid string) error
	IncrementViews(pid string) error
}

// MarkResult tags the outcome of a read-marker insert. A duplicate insert is
// an expected outcome, not an error, so callers branch on the tag.
type MarkResult int

const (
	MarkInserted MarkResult = iota
	MarkAlreadyExists
)

type ReadStore interface {
	// ReadSet returns which of the given posts the user has opened.
	ReadSet(userID uint, pids []string) (map[string]bool, error)
	MarkRead(pid string, userID uint) (MarkResult, error)
}

// Confirmer answers a blocking yes/no question before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }
