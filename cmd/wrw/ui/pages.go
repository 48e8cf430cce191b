package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/smirnoffmg/who-read-whom/internal/csvio"
	"github.com/smirnoffmg/who-read-whom/internal/importer"
)

// pageIndicator renders "page 2/5 (67 rows)" for the footer line.
func pageIndicator(pageIdx, total int) string {
	pages := (total + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	return fmt.Sprintf("page %d/%d (%d rows)", pageIdx+1, pages, total)
}

// sortedColumns marks the active sort column's title with its direction.
// The slice comes fresh from the page's column builder, so mutating the
// title in place is fine.
func sortedColumns(cols []table.Column, sortCol int, asc bool) []table.Column {
	if sortCol < 0 || sortCol >= len(cols) {
		return cols
	}
	dir := " ^"
	if !asc {
		dir = " v"
	}
	cols[sortCol].Title += dir
	return cols
}

// cycleSortCol advances the sort column, wrapping back to unsorted (-1)
// after the last column.
func cycleSortCol(sortCol, numCols int) int {
	sortCol++
	if sortCol >= numCols {
		return -1
	}
	return sortCol
}

func yearOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func textOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// importFlash summarizes a finished bulk import for the flash line.
func importFlash(styles Styles, tally importer.Tally) string {
	if tally.Failed == 0 {
		return styles.Success.Render(fmt.Sprintf("imported %d rows", tally.Created))
	}
	msg := fmt.Sprintf("imported %d rows, %d failed", tally.Created, tally.Failed)
	if len(tally.Failures) > 0 {
		msg += " (first: " + tally.Failures[0].String() + ")"
	}
	return styles.Warning.Render(msg)
}

// renderImportPreview shows accepted row count and per-row errors before the
// import is confirmed. Rows with errors were already excluded wholesale by
// the parser; an invalid file cannot be confirmed at all.
func renderImportPreview(styles Styles, entity string, accepted int, errs []csvio.RowError, valid bool) string {
	body := styles.Title.Render("Import "+entity) + "\n"
	body += fmt.Sprintf("%d accepted rows\n", accepted)

	if len(errs) > 0 {
		t := NewSimpleTable("Errors", []string{"Row", "Field", "Message"})
		for _, e := range errs {
			t.AddRow(strconv.Itoa(e.Row), e.Field, e.Message)
		}
		body += "\n" + t.View(styles)
	}

	if valid {
		body += "\n" + styles.Success.Render("[y]") + " import   " + styles.Muted.Render("[esc] cancel")
	} else {
		body += "\n" + styles.Error.Render("file has errors; fix and retry") + "   " + styles.Muted.Render("[esc] close")
	}
	return styles.Dialog.Render(body)
}
