package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

// OpinionService wraps the /opinions routes. Opinions are addressed by their
// composite (writer_id, work_id) key rather than a surrogate id.
type OpinionService struct {
	c *Client
}

// NewOpinionService creates an opinion service over the given client.
func NewOpinionService(c *Client) *OpinionService {
	return &OpinionService{c: c}
}

// List fetches up to limit opinions starting at offset.
func (s *OpinionService) List(ctx context.Context, limit, offset int) ([]domain.Opinion, error) {
	var opinions []domain.Opinion
	if err := s.c.do(ctx, http.MethodGet, "/opinions", listQuery(limit, offset, ""), nil, &opinions); err != nil {
		return nil, err
	}
	return opinions, nil
}

// ByWriter fetches every opinion authored by the given writer.
func (s *OpinionService) ByWriter(ctx context.Context, writerID int64) ([]domain.Opinion, error) {
	var opinions []domain.Opinion
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/opinions/writer/%d", writerID), nil, nil, &opinions); err != nil {
		return nil, err
	}
	return opinions, nil
}

// ByWork fetches every opinion targeting the given work.
func (s *OpinionService) ByWork(ctx context.Context, workID int64) ([]domain.Opinion, error) {
	var opinions []domain.Opinion
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/opinions/work/%d", workID), nil, nil, &opinions); err != nil {
		return nil, err
	}
	return opinions, nil
}

// Get fetches a single opinion by its composite key.
func (s *OpinionService) Get(ctx context.Context, writerID, workID int64) (*domain.Opinion, error) {
	var opinion domain.Opinion
	path := fmt.Sprintf("/opinions/writer/%d/work/%d", writerID, workID)
	if err := s.c.do(ctx, http.MethodGet, path, nil, nil, &opinion); err != nil {
		return nil, err
	}
	return &opinion, nil
}

// Create records a new opinion. Whether the backend rejects a duplicate
// composite key is its own business; the client does not pre-check.
func (s *OpinionService) Create(ctx context.Context, params domain.OpinionParams) (*domain.Opinion, error) {
	var opinion domain.Opinion
	if err := s.c.do(ctx, http.MethodPost, "/opinions", nil, params, &opinion); err != nil {
		return nil, err
	}
	return &opinion, nil
}

// Update replaces the mutable fields of the opinion at the composite key.
func (s *OpinionService) Update(ctx context.Context, writerID, workID int64, params domain.OpinionUpdateParams) error {
	path := fmt.Sprintf("/opinions/writer/%d/work/%d", writerID, workID)
	return s.c.do(ctx, http.MethodPut, path, nil, params, nil)
}

// Delete removes the opinion at the composite key.
func (s *OpinionService) Delete(ctx context.Context, writerID, workID int64) error {
	path := fmt.Sprintf("/opinions/writer/%d/work/%d", writerID, workID)
	return s.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
