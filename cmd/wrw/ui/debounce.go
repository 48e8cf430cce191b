package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDebounce is how long search input must be quiet before a
// request is dispatched.
const DefaultSearchDebounce = 300 * time.Millisecond

// DebounceMsg fires when a debounce window elapses. Only the message carrying
// the debouncer's current sequence is live; earlier ones are stale.
type DebounceMsg struct {
	Seq int
}

// Debouncer coalesces rapid events into one deferred message, in the
// sequence-number style bubbletea programs use instead of shared timers.
// Each Next call supersedes the pending window; when a DebounceMsg arrives,
// Live tells whether it is the latest one or a leftover to ignore.
type Debouncer struct {
	Duration time.Duration
	seq      int
}

// NewDebouncer creates a debouncer with the specified window.
func NewDebouncer(duration time.Duration) Debouncer {
	return Debouncer{Duration: duration}
}

// Next opens a new debounce window, invalidating any pending one. The
// returned command delivers a DebounceMsg after the window elapses.
func (d Debouncer) Next() (Debouncer, tea.Cmd) {
	d.seq++
	seq := d.seq
	cmd := tea.Tick(d.Duration, func(time.Time) tea.Msg {
		return DebounceMsg{Seq: seq}
	})
	return d, cmd
}

// Live reports whether msg belongs to the most recent window.
func (d Debouncer) Live(msg DebounceMsg) bool {
	return msg.Seq == d.seq
}

// Cancel invalidates any pending window without opening a new one.
func (d Debouncer) Cancel() Debouncer {
	d.seq++
	return d
}
