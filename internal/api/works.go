package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

// WorkService wraps the /works routes.
type WorkService struct {
	c *Client
}

// NewWorkService creates a work service over the given client.
func NewWorkService(c *Client) *WorkService {
	return &WorkService{c: c}
}

// List fetches up to limit works starting at offset.
func (s *WorkService) List(ctx context.Context, limit, offset int) ([]domain.Work, error) {
	var works []domain.Work
	if err := s.c.do(ctx, http.MethodGet, "/works", listQuery(limit, offset, ""), nil, &works); err != nil {
		return nil, err
	}
	return works, nil
}

// Search returns backend-ranked work candidates for the query.
func (s *WorkService) Search(ctx context.Context, query string, limit, offset int) ([]domain.Work, error) {
	var works []domain.Work
	if err := s.c.do(ctx, http.MethodGet, "/works", listQuery(limit, offset, query), nil, &works); err != nil {
		return nil, err
	}
	return works, nil
}

// Get fetches a single work by id.
func (s *WorkService) Get(ctx context.Context, id int64) (*domain.Work, error) {
	var work domain.Work
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d", id), nil, nil, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// ByAuthor fetches every work attributed to the given writer.
func (s *WorkService) ByAuthor(ctx context.Context, authorID int64) ([]domain.Work, error) {
	var works []domain.Work
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/works/author/%d", authorID), nil, nil, &works); err != nil {
		return nil, err
	}
	return works, nil
}

// Create creates a work; the backend assigns and returns its id.
func (s *WorkService) Create(ctx context.Context, params domain.WorkParams) (*domain.Work, error) {
	var work domain.Work
	if err := s.c.do(ctx, http.MethodPost, "/works", nil, params, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// Update replaces the work's fields.
func (s *WorkService) Update(ctx context.Context, id int64, params domain.WorkParams) error {
	return s.c.do(ctx, http.MethodPut, fmt.Sprintf("/works/%d", id), nil, params, nil)
}

// Delete removes the work.
func (s *WorkService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/works/%d", id), nil, nil, nil)
}
