package domain

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Opinion records a writer's documented sentiment toward a work, backed by a
// quote and a citation. Its identity is the (writer_id, work_id) pair; at most
// one opinion exists per pair.
type Opinion struct {
	WriterID      int64   `json:"writer_id"`
	WorkID        int64   `json:"work_id"`
	Sentiment     bool    `json:"sentiment"`
	Quote         string  `json:"quote"`
	Source        string  `json:"source"`
	Page          *string `json:"page"`
	StatementYear *int    `json:"statement_year"`
}

// Key returns the composite natural key used for lookups and de-duplication.
func (o Opinion) Key() string {
	return fmt.Sprintf("%d-%d", o.WriterID, o.WorkID)
}

// OpinionParams carries the full opinion payload for create requests.
type OpinionParams struct {
	WriterID      int64   `json:"writer_id"`
	WorkID        int64   `json:"work_id"`
	Sentiment     bool    `json:"sentiment"`
	Quote         string  `json:"quote"`
	Source        string  `json:"source"`
	Page          *string `json:"page,omitempty"`
	StatementYear *int    `json:"statement_year,omitempty"`
}

// OpinionUpdateParams carries the mutable opinion fields; the composite key is
// addressed in the URL and never changes.
type OpinionUpdateParams struct {
	Sentiment     bool    `json:"sentiment"`
	Quote         string  `json:"quote"`
	Source        string  `json:"source"`
	Page          *string `json:"page,omitempty"`
	StatementYear *int    `json:"statement_year,omitempty"`
}

// Validate checks the required opinion fields.
func (p OpinionParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WriterID, validation.Required.Error("Writer is required")),
		validation.Field(&p.WorkID, validation.Required.Error("Work is required")),
		validation.Field(&p.Quote, validation.Required.Error("Quote is required")),
		validation.Field(&p.Source, validation.Required.Error("Source is required")),
	)
}

// Validate checks the required mutable opinion fields.
func (p OpinionUpdateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Quote, validation.Required.Error("Quote is required")),
		validation.Field(&p.Source, validation.Required.Error("Source is required")),
	)
}

// ErrSelfOpinion is returned when a writer would opine on their own work.
var ErrSelfOpinion = fmt.Errorf("a writer cannot hold an opinion about their own work")

// CheckAuthorship enforces the invariant that the opining writer is not the
// author of the referenced work. The caller supplies the work the opinion
// targets; the check is skipped when the ids do not line up (wrong work).
func (p OpinionParams) CheckAuthorship(work Work) error {
	if work.ID == p.WorkID && work.AuthorID == p.WriterID {
		return ErrSelfOpinion
	}
	return nil
}
