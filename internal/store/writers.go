// Package store holds per-entity client-side caches of the last-fetched
// list plus loading/error flags. Actions call the REST services and
// reconcile local state; they never return errors to the caller — failure is
// signaled through nil/empty results and the Err field, which pages render
// as a dismissible banner.
//
// Every action stamps a request generation on entry and applies its response
// only while that generation is still current, so a late response from a
// superseded call cannot clobber newer state.
package store

import (
	"context"
	"sync"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// WriterAPI is the slice of the writer service the store needs.
type WriterAPI interface {
	List(ctx context.Context, limit, offset int) ([]domain.Writer, error)
	Get(ctx context.Context, id int64) (*domain.Writer, error)
	Create(ctx context.Context, params domain.WriterParams) (*domain.Writer, error)
	Update(ctx context.Context, id int64, params domain.WriterParams) error
	Delete(ctx context.Context, id int64) error
}

// Writers caches the writer list.
type Writers struct {
	mu      sync.Mutex
	svc     WriterAPI
	items   []domain.Writer
	loading bool
	err     string
	gen     uint64
}

// NewWriters creates a writer store over the given service.
func NewWriters(svc WriterAPI) *Writers {
	return &Writers{svc: svc}
}

// begin marks a new in-flight operation and returns its generation.
func (s *Writers) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	s.err = ""
	return s.gen
}

// FetchAll replaces the cached list with the fetch result. On failure the
// previous items are kept (stale-but-present read model) and Err is set.
func (s *Writers) FetchAll(ctx context.Context, limit, offset int) {
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
		logging.Get(logging.CategoryStore).Warnw("fetch writers failed", "error", err)
		return
	}
	s.items = items
}

// FetchByID fetches one writer without touching the cached list. Returns nil
// on failure.
func (s *Writers) FetchByID(ctx context.Context, id int64) *domain.Writer {
	gen := s.begin()
	writer, err := s.svc.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return writer
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	return writer
}

// Create creates a writer and appends it to the cached list. Returns nil on
// failure; callers detect failure by the nil, not by an error value.
func (s *Writers) Create(ctx context.Context, params domain.WriterParams) *domain.Writer {
	gen := s.begin()
	writer, err := s.svc.Create(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return writer
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	s.items = append(s.items, *writer)
	return writer
}

// Update performs the write, then re-fetches the entity so the cache holds
// server-confirmed state rather than an optimistic merge.
func (s *Writers) Update(ctx context.Context, id int64, params domain.WriterParams) {
	gen := s.begin()

	var (
		updated *domain.Writer
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

// Delete removes the writer and filters it out of the cached list.
func (s *Writers) Delete(ctx context.Context, id int64) {
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
func (s *Writers) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Items returns a copy of the cached list.
func (s *Writers) Items() []domain.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Writer, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether an operation is in flight.
func (s *Writers) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last operation's error message, or "" when none.
func (s *Writers) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Contains reports whether the cached list holds the given id. The writers
// page uses it to defer closing the delete dialog until the entity is
// observed absent from the refreshed list.
func (s *Writers) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.items {
		if w.ID == id {
			return true
		}
	}
	return false
}
