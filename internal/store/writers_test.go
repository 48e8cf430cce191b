package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubWriterAPI scripts each call's result.
type stubWriterAPI struct {
	mu       sync.Mutex
	list     func() ([]domain.Writer, error)
	get      func(id int64) (*domain.Writer, error)
	create   func(p domain.WriterParams) (*domain.Writer, error)
	update   func(id int64, p domain.WriterParams) error
	deleteFn func(id int64) error
}

func (a *stubWriterAPI) List(context.Context, int, int) ([]domain.Writer, error) {
	a.mu.Lock()
	fn := a.list
	a.mu.Unlock()
	return fn()
}

func (a *stubWriterAPI) Get(_ context.Context, id int64) (*domain.Writer, error) {
	return a.get(id)
}

func (a *stubWriterAPI) Create(_ context.Context, p domain.WriterParams) (*domain.Writer, error) {
	return a.create(p)
}

func (a *stubWriterAPI) Update(_ context.Context, id int64, p domain.WriterParams) error {
	return a.update(id, p)
}

func (a *stubWriterAPI) Delete(_ context.Context, id int64) error {
	return a.deleteFn(id)
}

func (a *stubWriterAPI) setList(fn func() ([]domain.Writer, error)) {
	a.mu.Lock()
	a.list = fn
	a.mu.Unlock()
}

var austen = domain.Writer{ID: 1, Name: "Jane Austen", BirthYear: 1775}

func TestFetchAllReplacesItems(t *testing.T) {
	api := &stubWriterAPI{}
	api.setList(func() ([]domain.Writer, error) { return []domain.Writer{austen}, nil })

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)

	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Jane Austen", s.Items()[0].Name)
}

func TestFetchAllFailureKeepsStaleItems(t *testing.T) {
	api := &stubWriterAPI{}
	api.setList(func() ([]domain.Writer, error) { return []domain.Writer{austen}, nil })

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)
	require.Len(t, s.Items(), 1)

	api.setList(func() ([]domain.Writer, error) { return nil, errors.New("backend down") })
	s.FetchAll(context.Background(), 1000, 0)

	assert.Equal(t, "backend down", s.Err())
	assert.Len(t, s.Items(), 1, "stale items must survive a failed refresh")
	assert.False(t, s.Loading())
}

func TestCreateAppendsOnSuccess(t *testing.T) {
	api := &stubWriterAPI{
		create: func(p domain.WriterParams) (*domain.Writer, error) {
			return &domain.Writer{ID: 5, Name: p.Name, BirthYear: p.BirthYear}, nil
		},
	}
	s := NewWriters(api)

	created := s.Create(context.Background(), domain.WriterParams{Name: "Mark Twain", BirthYear: 1835})
	require.NotNil(t, created)
	assert.Equal(t, int64(5), created.ID)
	require.Len(t, s.Items(), 1)
	assert.True(t, s.Contains(5))
}

func TestCreateReturnsNilOnFailure(t *testing.T) {
	api := &stubWriterAPI{
		create: func(domain.WriterParams) (*domain.Writer, error) {
			return nil, errors.New("name already taken")
		},
	}
	s := NewWriters(api)

	created := s.Create(context.Background(), domain.WriterParams{Name: "Dup", BirthYear: 1900})
	assert.Nil(t, created)
	assert.Equal(t, "name already taken", s.Err())
	assert.Empty(t, s.Items())
}

func TestUpdateReplacesWithServerConfirmedState(t *testing.T) {
	// The server normalizes the name on write; the cache must reflect the
	// re-fetched value, not the submitted params.
	serverCopy := austen
	api := &stubWriterAPI{
		update: func(id int64, p domain.WriterParams) error {
			serverCopy.Name = p.Name + " (confirmed)"
			return nil
		},
		get: func(id int64) (*domain.Writer, error) { return &serverCopy, nil },
	}
	api.setList(func() ([]domain.Writer, error) { return []domain.Writer{austen}, nil })

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)
	s.Update(context.Background(), 1, domain.WriterParams{Name: "Jane Austen", BirthYear: 1775})

	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Jane Austen (confirmed)", s.Items()[0].Name)
}

func TestUpdateFailureLeavesItemsUntouched(t *testing.T) {
	api := &stubWriterAPI{
		update: func(int64, domain.WriterParams) error { return errors.New("conflict") },
	}
	api.setList(func() ([]domain.Writer, error) { return []domain.Writer{austen}, nil })

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)
	s.Update(context.Background(), 1, domain.WriterParams{Name: "X", BirthYear: 1})

	assert.Equal(t, "conflict", s.Err())
	assert.Equal(t, "Jane Austen", s.Items()[0].Name)
}

func TestDeleteFiltersOutByID(t *testing.T) {
	api := &stubWriterAPI{
		deleteFn: func(int64) error { return nil },
	}
	api.setList(func() ([]domain.Writer, error) {
		return []domain.Writer{austen, {ID: 2, Name: "Mark Twain", BirthYear: 1835}}, nil
	})

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)
	s.Delete(context.Background(), 1)

	require.Len(t, s.Items(), 1)
	assert.Equal(t, int64(2), s.Items()[0].ID)
	assert.False(t, s.Contains(1))
}

func TestDeleteFailureKeepsItem(t *testing.T) {
	api := &stubWriterAPI{
		deleteFn: func(int64) error { return errors.New("writer has works") },
	}
	api.setList(func() ([]domain.Writer, error) { return []domain.Writer{austen}, nil })

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)
	s.Delete(context.Background(), 1)

	assert.Equal(t, "writer has works", s.Err())
	assert.True(t, s.Contains(1))
}

func TestClearError(t *testing.T) {
	api := &stubWriterAPI{}
	api.setList(func() ([]domain.Writer, error) { return nil, errors.New("boom") })

	s := NewWriters(api)
	s.FetchAll(context.Background(), 1000, 0)
	require.NotEmpty(t, s.Err())

	s.ClearError()
	assert.Empty(t, s.Err())
}

func TestLateResponseOfSupersededFetchIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &stubWriterAPI{}
	// First call signals entry, blocks until released, and returns old data.
	api.setList(func() ([]domain.Writer, error) {
		close(started)
		<-release
		return []domain.Writer{{ID: 99, Name: "Stale", BirthYear: 1}}, nil
	})

	s := NewWriters(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchAll(context.Background(), 1000, 0)
	}()
	<-started

	// Second call supersedes the first and completes immediately.
	api.setList(func() ([]domain.Writer, error) { return []domain.Writer{austen}, nil })
	s.FetchAll(context.Background(), 1000, 0)
	require.Equal(t, "Jane Austen", s.Items()[0].Name)

	// Release the first call; its late response must not clobber the cache.
	close(release)
	<-done
	assert.Equal(t, "Jane Austen", s.Items()[0].Name)
	assert.False(t, s.Loading())
}
