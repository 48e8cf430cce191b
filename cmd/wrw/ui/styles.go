// Package ui implements the interactive who-read-whom admin console: tabbed
// CRUD pages for writers, works and opinions, plus the opinion graph view.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Ink-and-paper in light mode, inverted for dark terminals.
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f7f5f0") // warm paper
	LightForeground = lipgloss.Color("#1f2430") // ink
	LightPrimary    = lipgloss.Color("#1f2430")
	LightAccent     = lipgloss.Color("#7c5cbf") // violet
	LightSecondary  = lipgloss.Color("#e8e4da")
	LightMuted      = lipgloss.Color("#9a958a")
	LightBorder     = lipgloss.Color("#d8d3c8")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#171b24")
	DarkForeground = lipgloss.Color("#ece9e2")
	DarkPrimary    = lipgloss.Color("#a88fe0")
	DarkAccent     = lipgloss.Color("#7c5cbf")
	DarkSecondary  = lipgloss.Color("#222836")
	DarkMuted      = lipgloss.Color("#5c6370")
	DarkBorder     = lipgloss.Color("#343b4a")
	DarkCard       = lipgloss.Color("#1e2430")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e0504a")
	Success     = lipgloss.Color("#57a773")
	Warning     = lipgloss.Color("#e0a43c")
	Info        = lipgloss.Color("#4d8fd1")

	// Sentiment Colors for graph links
	Positive = lipgloss.Color("#57a773")
	Negative = lipgloss.Color("#e0504a")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme picks dark or light from the terminal environment. COLORFGBG is
// "foreground;background"; low background indices mean a dark terminal.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("WRW_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Forms
	FormLabel   lipgloss.Style
	FormError   lipgloss.Style
	FieldActive lipgloss.Style
	FieldIdle   lipgloss.Style

	// Dialogs
	Dialog       lipgloss.Style
	DialogDanger lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Graph
	WriterNode   lipgloss.Style
	WorkNode     lipgloss.Style
	LinkPositive lipgloss.Style
	LinkNegative lipgloss.Style

	// Components
	Banner  lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a Styles instance with the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		TabActive: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		TabInactive: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		FormLabel: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		FormError: lipgloss.NewStyle().
			Foreground(Destructive).
			Italic(true),

		FieldActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),

		FieldIdle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Background(theme.Card).
			Padding(1, 2),

		DialogDanger: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Background(theme.Card).
			Padding(1, 2),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		WriterNode: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		WorkNode: lipgloss.NewStyle().
			Foreground(Info),

		LinkPositive: lipgloss.NewStyle().
			Foreground(Positive),

		LinkNegative: lipgloss.NewStyle().
			Foreground(Negative),

		Banner: lipgloss.NewStyle().
			Background(Destructive).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles with the auto-detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo returns the console banner.
func Logo(s Styles) string {
	logo := `
 __      __ ___ __      __
 \ \    / /| _ \\ \    / /   who read whom
  \ \/\/ / |   / \ \/\/ /    writers, works, opinions
   \_/\_/  |_|_\  \_/\_/
`
	return s.Title.Foreground(s.Theme.Primary).Render(logo)
}

// RenderDivider returns a horizontal divider of the given width.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}
