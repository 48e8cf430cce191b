package csvio

import (
	"strconv"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

// Opinions carry no surrogate id; the composite key columns come first.
var opinionColumns = []string{"writer_id", "work_id", "sentiment", "quote", "source", "page", "statement_year"}

// ExportOpinions renders opinions as CSV with a header row.
func ExportOpinions(opinions []domain.Opinion) string {
	rows := make([][]string, 0, len(opinions))
	for _, o := range opinions {
		rows = append(rows, []string{
			strconv.FormatInt(o.WriterID, 10),
			strconv.FormatInt(o.WorkID, 10),
			strconv.FormatBool(o.Sentiment),
			o.Quote,
			o.Source,
			optionalString(o.Page),
			optionalInt(o.StatementYear),
		})
	}
	return writeTable(opinionColumns, rows)
}

// ImportOpinions parses opinion CSV text, validating each data row.
func ImportOpinions(text string) (ImportResult[domain.Opinion], error) {
	var result ImportResult[domain.Opinion]

	records, err := parseTable(text)
	if err != nil {
		return result, err
	}

	for i, rec := range records {
		rowNum := i + 2
		before := len(result.Errors)

		rawWriter := rec.get("writer_id")
		if rawWriter == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "writer_id", "Writer ID is required"})
		}
		writerID, err := strconv.ParseInt(rawWriter, 10, 64)
		if err != nil {
			result.Errors = append(result.Errors, RowError{rowNum, "writer_id", "Writer ID must be a valid number"})
		}

		rawWork := rec.get("work_id")
		if rawWork == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "work_id", "Work ID is required"})
		}
		workID, err := strconv.ParseInt(rawWork, 10, 64)
		if err != nil {
			result.Errors = append(result.Errors, RowError{rowNum, "work_id", "Work ID must be a valid number"})
		}

		rawSentiment := rec.get("sentiment")
		if rawSentiment == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "sentiment", "Sentiment is required"})
		}
		sentiment, ok := parseSentiment(rawSentiment)
		if !ok {
			result.Errors = append(result.Errors, RowError{rowNum, "sentiment", "Sentiment must be true/false or 1/0"})
		}

		quote := rec.get("quote")
		if quote == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "quote", "Quote is required"})
		}

		source := rec.get("source")
		if source == "" {
			result.Errors = append(result.Errors, RowError{rowNum, "source", "Source is required"})
		}

		var page *string
		if raw := rec.get("page"); raw != "" {
			page = &raw
		}

		var statementYear *int
		if raw := rec.get("statement_year"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				result.Errors = append(result.Errors, RowError{rowNum, "statement_year", "Statement year must be a valid number"})
			} else {
				statementYear = &v
			}
		}

		if len(result.Errors) == before {
			result.Data = append(result.Data, domain.Opinion{
				WriterID:      writerID,
				WorkID:        workID,
				Sentiment:     sentiment,
				Quote:         quote,
				Source:        source,
				Page:          page,
				StatementYear: statementYear,
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}
