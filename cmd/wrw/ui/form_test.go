package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

func TestFormValuesAndOptionals(t *testing.T) {
	f := NewForm(
		FieldSpec{Key: "name", Label: "Name", Kind: FieldText},
		FieldSpec{Key: "birth_year", Label: "Birth year", Kind: FieldInt},
		FieldSpec{Key: "death_year", Label: "Death year", Kind: FieldInt},
	)
	f.SetValue("name", "  Jane Austen  ")
	f.SetValue("birth_year", "1775")

	assert.Equal(t, "Jane Austen", f.Value("name"))
	assert.Equal(t, 1775, f.IntValue("birth_year"))
	assert.Nil(t, f.OptionalInt("death_year"))
	assert.Nil(t, f.OptionalString("death_year"))

	f.SetValue("death_year", "1817")
	require.NotNil(t, f.OptionalInt("death_year"))
	assert.Equal(t, 1817, *f.OptionalInt("death_year"))
}

func TestFormParseErrorsFlagUnparseableNumbers(t *testing.T) {
	f := NewForm(
		FieldSpec{Key: "name", Label: "Name", Kind: FieldText},
		FieldSpec{Key: "birth_year", Label: "Birth year", Kind: FieldInt},
		FieldSpec{Key: "death_year", Label: "Death year", Kind: FieldInt},
	)
	f.SetValue("name", "Jane Austen")
	f.SetValue("birth_year", "seventeen-seventy-five")

	errs := f.ParseErrors()
	require.Len(t, errs, 1)
	assert.EqualError(t, errs["birth_year"], "must be a valid number")

	// Blank optional fields are not parse errors.
	f.SetValue("birth_year", "1775")
	assert.Empty(t, f.ParseErrors())
}

func TestFormBoolToggleOnSpace(t *testing.T) {
	f := NewForm(FieldSpec{Key: "sentiment", Label: "Sentiment", Kind: FieldBool})
	assert.False(t, f.BoolValue("sentiment"))

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	assert.True(t, f.BoolValue("sentiment"))

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	assert.False(t, f.BoolValue("sentiment"))
}

func TestFormValidationErrorsLandOnFields(t *testing.T) {
	f := NewForm(
		FieldSpec{Key: "name", Label: "Name", Kind: FieldText},
		FieldSpec{Key: "birth_year", Label: "Birth year", Kind: FieldInt},
	)

	err := domain.WriterParams{}.Validate()
	require.Error(t, err)
	f.SetErrors(err)

	assert.True(t, f.HasErrors())
	out := f.View(NewStyles(LightTheme()))
	assert.Contains(t, out, "Name is required")
	assert.Contains(t, out, "Birth year is required")

	f.SetErrors(nil)
	assert.False(t, f.HasErrors())
}

func TestFormFocusCycles(t *testing.T) {
	f := NewForm(
		FieldSpec{Key: "a", Label: "A", Kind: FieldText},
		FieldSpec{Key: "b", Label: "B", Kind: FieldText},
	)
	assert.Equal(t, 0, f.focus)

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, f.focus)

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, f.focus, "focus wraps")

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, f.focus)
}
