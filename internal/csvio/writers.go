package csvio

import (
	"strconv"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

var writerColumns = []string{"id", "name", "birth_year", "death_year", "bio"}

// ExportWriters renders writers as CSV with a header row.
func ExportWriters(writers []domain.Writer) string {
	rows := make([][]string, 0, len(writers))
	for _, w := range writers {
		rows = append(rows, []string{
			strconv.FormatInt(w.ID, 10),
			w.Name,
			strconv.Itoa(w.BirthYear),
			optionalInt(w.DeathYear),
			optionalString(w.Bio),
		})
	}
	return writeTable(writerColumns, rows)
}

// ImportWriters parses writer CSV text, validating each data row. The id
// column is parsed when present but import always creates new rows, so the
// backend reassigns identity.
func ImportWriters(text string) (ImportResult[domain.Writer], error) {
	var result ImportResult[domain.Writer]

	records, err := parseTable(text)
	if err != nil {
		return result, err
	}

	for i, rec := range records {
		rowNum := i + 2
		before := len(result.Errors)

		name := rec.get("name")
		if name == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "name", "Name is required"})
		}

		rawBirth := rec.get("birth_year")
		if rawBirth == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "birth_year", "Birth year is required"})
		}
		birthYear, err := strconv.Atoi(rawBirth)
		if err != nil {
			result.Errors = append(result.Errors, RowError{rowNum, "birth_year", "Birth year must be a valid number"})
		}

		var deathYear *int
		if raw := rec.get("death_year"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				result.Errors = append(result.Errors, RowError{rowNum, "death_year", "Death year must be a valid number"})
			} else {
				deathYear = &v
			}
		}

		var bio *string
		if raw := rec.get("bio"); raw != "" {
			bio = &raw
		}

		id, _ := strconv.ParseInt(rec.get("id"), 10, 64)

		if len(result.Errors) == before {
			result.Data = append(result.Data, domain.Writer{
				ID:        id,
				Name:      name,
				BirthYear: birthYear,
				DeathYear: deathYear,
				Bio:       bio,
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}
