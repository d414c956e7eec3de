package entry

import (
	"sync"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

// Accumulator is the session's append-only log of submitted entries. It is
// not persisted.
type Accumulator struct {
	mu      sync.Mutex
	entries []domain.Entry
	now     func() time.Time
}

func NewAccumulator(now func() time.Time) *Accumulator {
	if now == nil {
		now = time.Now
	}
	return &Accumulator{now: now}
}

// Submit validates d and appends it as a new entry. On validation failure
// nothing is appended.
func (a *Accumulator) Submit(d Draft) (domain.Entry, error) {
	if err := d.Validate(); err != nil {
		return domain.Entry{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	e := d.toEntry(a.now())
	a.entries = append(a.entries, e)
	return e, nil
}

// Entries returns a copy of the log in submission order.
func (a *Accumulator) Entries() []domain.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Entry, len(a.entries))
	for i, e := range a.entries {
		e.PhotoURIs = append([]string(nil), e.PhotoURIs...)
		out[i] = e
	}
	return out
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
