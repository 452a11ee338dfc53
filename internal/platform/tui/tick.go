// Package tui provides the Bubble Tea integration for the platform.
// It handles the terminal UI loop, input mapping, and episode orchestration.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to auto-advance real-time games by one step.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick after the given
// interval in milliseconds.
func tickCmd(millis int) tea.Cmd {
	return tea.Tick(time.Duration(millis)*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
