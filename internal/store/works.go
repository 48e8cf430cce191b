package store

import (
	"context"
	"sync"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// WorkAPI is the slice of the work service the store needs.
type WorkAPI interface {
	List(ctx context.Context, limit, offset int) ([]domain.Work, error)
	Get(ctx context.Context, id int64) (*domain.Work, error)
	ByAuthor(ctx context.Context, authorID int64) ([]domain.Work, error)
	Create(ctx context.Context, params domain.WorkParams) (*domain.Work, error)
	Update(ctx context.Context, id int64, params domain.WorkParams) error
	Delete(ctx context.Context, id int64) error
}

// Works caches the work list.
type Works struct {
	mu      sync.Mutex
	svc     WorkAPI
	items   []domain.Work
	loading bool
	err     string
	gen     uint64
}

// NewWorks creates a work store over the given service.
func NewWorks(svc WorkAPI) *Works {
	return &Works{svc: svc}
}

func (s *Works) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	s.err = ""
	return s.gen
}

// FetchAll replaces the cached list; on failure it keeps the stale list.
func (s *Works) FetchAll(ctx context.Context, limit, offset int) {
	gen := s.begin()
	items, err := s.svc.List(ctx, limit, offset)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		logging.Get(logging.CategoryStore).Warnw("fetch works failed", "error", err)
		return
	}
	s.items = items
}

// FetchByID fetches one work without touching the cached list.
func (s *Works) FetchByID(ctx context.Context, id int64) *domain.Work {
	gen := s.begin()
	work, err := s.svc.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return work
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	return work
}

// FetchByAuthor fetches the works of one writer without touching the cached
// list. Returns an empty slice on failure.
func (s *Works) FetchByAuthor(ctx context.Context, authorID int64) []domain.Work {
	gen := s.begin()
	works, err := s.svc.ByAuthor(ctx, authorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return works
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	return works
}

// Create creates a work and appends it to the cached list; nil on failure.
func (s *Works) Create(ctx context.Context, params domain.WorkParams) *domain.Work {
	gen := s.begin()
	work, err := s.svc.Create(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return work
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	s.items = append(s.items, *work)
	return work
}

// Update writes, re-fetches, and replaces the cached entry by id.
func (s *Works) Update(ctx context.Context, id int64, params domain.WorkParams) {
	gen := s.begin()

	var (
		updated *domain.Work
		err     error
	)
	if err = s.svc.Update(ctx, id, params); err == nil {
		updated, err = s.svc.Get(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = *updated
			break
		}
	}
}

// Delete removes the work and filters it out of the cached list.
func (s *Works) Delete(ctx context.Context, id int64) {
	gen := s.begin()
	err := s.svc.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}
	kept := s.items[:0]
	for _, w := range s.items {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	s.items = kept
}

// ClearError resets Err without touching items or the loading flag.
func (s *Works) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Items returns a copy of the cached list.
func (s *Works) Items() []domain.Work {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Work, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether an operation is in flight.
func (s *Works) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last operation's error message, or "" when none.
func (s *Works) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
