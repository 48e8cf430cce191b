package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

// WriterService wraps the /writers routes.
type WriterService struct {
	c *Client
}

// NewWriterService creates a writer service over the given client.
func NewWriterService(c *Client) *WriterService {
	return &WriterService{c: c}
}

// List fetches up to limit writers starting at offset.
func (s *WriterService) List(ctx context.Context, limit, offset int) ([]domain.Writer, error) {
	var writers []domain.Writer
	if err := s.c.do(ctx, http.MethodGet, "/writers", listQuery(limit, offset, ""), nil, &writers); err != nil {
		return nil, err
	}
	return writers, nil
}

// Search returns backend-ranked writer candidates for the query.
func (s *WriterService) Search(ctx context.Context, query string, limit, offset int) ([]domain.Writer, error) {
	var writers []domain.Writer
	if err := s.c.do(ctx, http.MethodGet, "/writers", listQuery(limit, offset, query), nil, &writers); err != nil {
		return nil, err
	}
	return writers, nil
}

// Get fetches a single writer by id.
func (s *WriterService) Get(ctx context.Context, id int64) (*domain.Writer, error) {
	var writer domain.Writer
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/writers/%d", id), nil, nil, &writer); err != nil {
		return nil, err
	}
	return &writer, nil
}

// Create creates a writer; the backend assigns and returns its id.
func (s *WriterService) Create(ctx context.Context, params domain.WriterParams) (*domain.Writer, error) {
	var writer domain.Writer
	if err := s.c.do(ctx, http.MethodPost, "/writers", nil, params, &writer); err != nil {
		return nil, err
	}
	return &writer, nil
}

// Update replaces the writer's fields.
func (s *WriterService) Update(ctx context.Context, id int64, params domain.WriterParams) error {
	return s.c.do(ctx, http.MethodPut, fmt.Sprintf("/writers/%d", id), nil, params, nil)
}

// Delete removes the writer. The backend rejects deletion while works or
// opinions still reference the writer.
func (s *WriterService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/writers/%d", id), nil, nil, nil)
}
