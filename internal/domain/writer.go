// Package domain defines the entity shapes exchanged with the who-read-whom
// backend API. The backend is the authoritative owner of all entities; this
// package only mirrors its JSON contracts and validates request parameters
// before they leave the client.
package domain

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Writer is a person who authors works and holds opinions about others' works.
type Writer struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	BirthYear int     `json:"birth_year"`
	DeathYear *int    `json:"death_year"`
	Bio       *string `json:"bio"`
}

// WriterParams carries the writer fields for create and update requests.
// The backend assigns identity, so there is no ID here.
type WriterParams struct {
	Name      string  `json:"name"`
	BirthYear int     `json:"birth_year"`
	DeathYear *int    `json:"death_year"`
	Bio       *string `json:"bio"`
}

// Validate checks the required writer fields. A death year earlier than the
// birth year is deliberately accepted (posthumous data is messy; rejecting the
// ordering is a product decision that has not been made).
func (p WriterParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required.Error("Name is required")),
		validation.Field(&p.BirthYear, validation.Required.Error("Birth year is required")),
	)
}
