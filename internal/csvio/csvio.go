// Package csvio converts between entity lists and CSV text, with row-level
// validation on import. Export is deterministic: the same input always
// produces the same bytes, with fixed column orders, nullable fields as empty
// strings, and booleans as the literal "true"/"false".
//
// Import never fails on malformed field content — every problem lands in the
// result's Errors list keyed by row and field. Only a structurally unreadable
// stream returns an error.
package csvio

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// RowError describes one validation failure on one field of one CSV row.
// Row is 1-based counting the header, so the first data row is 2.
type RowError struct {
	Row     int
	Field   string
	Message string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// ImportResult holds the accepted rows and every validation error. A row
// with any error is excluded from Data wholesale. IsValid gates downstream
// import confirmation and is true iff Errors is empty.
type ImportResult[T any] struct {
	Data    []T
	Errors  []RowError
	IsValid bool
}

// record is one data row with values addressable by normalized header name.
type record map[string]string

// get returns the trimmed value for the column, or "" when absent or blank.
func (r record) get(name string) string {
	return strings.TrimSpace(r[name])
}

// parseTable reads CSV text with a header row. Header names are trimmed and
// lower-cased before matching; ragged rows are tolerated (missing cells read
// as empty); rows whose every cell is blank are skipped, matching how the
// admin UI's CSV files are usually hand-edited.
func parseTable(text string) ([]record, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []record
	for _, row := range rows[1:] {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		rec := make(record, len(headers))
		for i, name := range headers {
			if i < len(row) {
				rec[name] = row[i]
			}
		}
		records = append(records, rec)
	}

	logging.Get(logging.CategoryCSV).Debugw("parsed csv", "rows", len(records))
	return records, nil
}

// writeTable renders a header plus rows through encoding/csv, which handles
// quoting of embedded delimiters, quotes, and newlines.
func writeTable(headers []string, rows [][]string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(headers)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
	return sb.String()
}

// optionalInt formats a nullable integer, rendering nil as "".
func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// optionalString renders nil as "".
func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// parseSentiment accepts exactly true/false/1/0, case-insensitively.
func parseSentiment(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}
