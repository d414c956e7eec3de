package entry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/fieldinspect/internal/domain"
)

// Session is the state of the active form screen: one draft and the entries
// submitted so far.
type Session struct {
	id  string
	acc *Accumulator
	now func() time.Time

	mu    sync.Mutex
	draft Draft
}

func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:    uuid.NewString(),
		acc:   NewAccumulator(now),
		now:   now,
		draft: NewDraft(now()),
	}
}

func (s *Session) ID() string { return s.id }

// Draft returns a copy of the current draft.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// UpdateDraft applies fn to a copy of the draft and keeps the result only if
// fn succeeds.
func (s *Session) UpdateDraft(fn func(*Draft) error) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.draft.Clone()
	if err := fn(&next); err != nil {
		return s.draft.Clone(), err
	}
	s.draft = next
	return next.Clone(), nil
}

// Submit appends the draft to the log and resets the form. A failed
// validation leaves both untouched.
func (s *Session) Submit() (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.acc.Submit(s.draft)
	if err != nil {
		return domain.Entry{}, err
	}
	s.draft = NewDraft(s.now())
	return e, nil
}

// Reset clears the draft without touching submitted entries. It returns the
// photos that were pending so the caller can discard them.
func (s *Session) Reset() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.draft.PhotoURIs
	s.draft = NewDraft(s.now())
	return pending
}

func (s *Session) Entries() []domain.Entry { return s.acc.Entries() }

func (s *Session) Len() int { return s.acc.Len() }
