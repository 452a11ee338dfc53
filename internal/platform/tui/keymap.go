package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridstage/internal/registry"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action registry.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return registry.ActionQuit, true
	case "w", "up", "k":
		return registry.ActionUp, false
	case "s", "down", "j":
		return registry.ActionDown, false
	case "a", "left", "h":
		return registry.ActionLeft, false
	case "d", "right", "l":
		return registry.ActionRight, false
	case " ", ".":
		return registry.ActionStay, false
	}
	return registry.ActionNone, false
}

// IsRestart reports whether the key requests a fresh episode.
func (km *KeyMapper) IsRestart(msg tea.KeyMsg) bool {
	return msg.String() == "r"
}
