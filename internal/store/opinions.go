package store

import (
	"context"
	"sync"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// OpinionAPI is the slice of the opinion service the store needs.
type OpinionAPI interface {
	List(ctx context.Context, limit, offset int) ([]domain.Opinion, error)
	ByWriter(ctx context.Context, writerID int64) ([]domain.Opinion, error)
	ByWork(ctx context.Context, workID int64) ([]domain.Opinion, error)
	Get(ctx context.Context, writerID, workID int64) (*domain.Opinion, error)
	Create(ctx context.Context, params domain.OpinionParams) (*domain.Opinion, error)
	Update(ctx context.Context, writerID, workID int64, params domain.OpinionUpdateParams) error
	Delete(ctx context.Context, writerID, workID int64) error
}

// Opinions caches the opinion list. Opinions are identified by their
// composite (writer_id, work_id) key everywhere.
type Opinions struct {
	mu      sync.Mutex
	svc     OpinionAPI
	items   []domain.Opinion
	loading bool
	err     string
	gen     uint64
}

// NewOpinions creates an opinion store over the given service.
func NewOpinions(svc OpinionAPI) *Opinions {
	return &Opinions{svc: svc}
}

func (s *Opinions) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	s.err = ""
	return s.gen
}

// FetchAll replaces the cached list; on failure it keeps the stale list.
func (s *Opinions) FetchAll(ctx context.Context, limit, offset int) {
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
		logging.Get(logging.CategoryStore).Warnw("fetch opinions failed", "error", err)
		return
	}
	s.items = items
}

// FetchByWriter fetches one writer's opinions without touching the cached
// list. Returns nil on failure.
func (s *Opinions) FetchByWriter(ctx context.Context, writerID int64) []domain.Opinion {
	gen := s.begin()
	opinions, err := s.svc.ByWriter(ctx, writerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return opinions
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	return opinions
}

// FetchByWork fetches a work's opinions without touching the cached list.
func (s *Opinions) FetchByWork(ctx context.Context, workID int64) []domain.Opinion {
	gen := s.begin()
	opinions, err := s.svc.ByWork(ctx, workID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return opinions
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	return opinions
}

// Create records an opinion and appends it to the cached list; nil on
// failure.
func (s *Opinions) Create(ctx context.Context, params domain.OpinionParams) *domain.Opinion {
	gen := s.begin()
	opinion, err := s.svc.Create(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return opinion
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return nil
	}
	s.items = append(s.items, *opinion)
	return opinion
}

// Update writes, re-fetches by composite key, and replaces the cached entry.
func (s *Opinions) Update(ctx context.Context, writerID, workID int64, params domain.OpinionUpdateParams) {
	gen := s.begin()

	var (
		updated *domain.Opinion
		err     error
	)
	if err = s.svc.Update(ctx, writerID, workID, params); err == nil {
		updated, err = s.svc.Get(ctx, writerID, workID)
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
		if s.items[i].WriterID == writerID && s.items[i].WorkID == workID {
			s.items[i] = *updated
			break
		}
	}
}

// Delete removes the opinion and filters it out of the cached list.
func (s *Opinions) Delete(ctx context.Context, writerID, workID int64) {
	gen := s.begin()
	err := s.svc.Delete(ctx, writerID, workID)

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
	for _, o := range s.items {
		if o.WriterID != writerID || o.WorkID != workID {
			kept = append(kept, o)
		}
	}
	s.items = kept
}

// ClearError resets Err without touching items or the loading flag.
func (s *Opinions) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Items returns a copy of the cached list.
func (s *Opinions) Items() []domain.Opinion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Opinion, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether an operation is in flight.
func (s *Opinions) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last operation's error message, or "" when none.
func (s *Opinions) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
