package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectThemeHonorsDarkModeEnv(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("WRW_DARK_MODE", "1")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("WRW_DARK_MODE", "")
	assert.False(t, DetectTheme().IsDark)
}

func TestDetectThemeReadsColorFgBg(t *testing.T) {
	t.Setenv("WRW_DARK_MODE", "")

	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)

	// Garbage falls back to light.
	t.Setenv("COLORFGBG", "nonsense")
	assert.False(t, DetectTheme().IsDark)
}

func TestNewStylesCarriesTheme(t *testing.T) {
	s := NewStyles(DarkTheme())
	assert.True(t, s.Theme.IsDark)
	assert.Equal(t, DarkPrimary, s.Theme.Primary)
}
