package csvio

import (
	"strconv"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

var workColumns = []string{"id", "title", "author_id"}

// ExportWorks renders works as CSV with a header row.
func ExportWorks(works []domain.Work) string {
	rows := make([][]string, 0, len(works))
	for _, w := range works {
		rows = append(rows, []string{
			strconv.FormatInt(w.ID, 10),
			w.Title,
			strconv.FormatInt(w.AuthorID, 10),
		})
	}
	return writeTable(workColumns, rows)
}

// ImportWorks parses work CSV text, validating each data row.
func ImportWorks(text string) (ImportResult[domain.Work], error) {
	var result ImportResult[domain.Work]

	records, err := parseTable(text)
	if err != nil {
		return result, err
	}

	for i, rec := range records {
		rowNum := i + 2
		before := len(result.Errors)

		title := rec.get("title")
		if title == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "title", "Title is required"})
		}

		rawAuthor := rec.get("author_id")
		if rawAuthor == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "author_id", "Author ID is required"})
		}
		authorID, err := strconv.ParseInt(rawAuthor, 10, 64)
		if err != nil {
			result.Errors = append(result.Errors, RowError{rowNum, "author_id", "Author ID must be a valid number"})
		}

		id, _ := strconv.ParseInt(rec.get("id"), 10, 64)

		if len(result.Errors) == before {
			result.Data = append(result.Data, domain.Work{
				ID:       id,
				Title:    title,
				AuthorID: authorID,
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}
