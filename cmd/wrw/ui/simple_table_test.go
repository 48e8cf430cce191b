package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTableRendersHeadersAndRows(t *testing.T) {
	table := NewSimpleTable("Errors", []string{"Row", "Field", "Message"})
	table.AddRow("2", "name", "Name is required")
	table.AddRow("5", "sentiment", "Invalid sentiment value")

	out := table.View(NewStyles(LightTheme()))

	assert.Contains(t, out, "Errors")
	assert.Contains(t, out, "Row")
	assert.Contains(t, out, "Name is required")
	assert.Contains(t, out, "Invalid sentiment value")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 4)
}

func TestSimpleTableEmptyRendersNothing(t *testing.T) {
	table := NewSimpleTable("Empty", []string{"A", "B"})
	assert.Equal(t, "", table.View(NewStyles(LightTheme())))
}
