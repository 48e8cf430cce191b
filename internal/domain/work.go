package domain

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Work is a literary work attributed to exactly one writer.
type Work struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	AuthorID int64  `json:"author_id"`
}

// WorkParams carries the work fields for create and update requests.
type WorkParams struct {
	Title    string `json:"title"`
	AuthorID int64  `json:"author_id"`
}

// Validate checks the required work fields. Whether AuthorID references an
// existing writer is enforced by the backend, not here.
func (p WorkParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required.Error("Title is required")),
		validation.Field(&p.AuthorID, validation.Required.Error("Author is required")),
	)
}
