package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gridstage/internal/games/drift"
	"github.com/vovakirdan/gridstage/internal/games/maze"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// Palette maps board characters to lipgloss styles. Characters without an
// entry render unstyled.
type Palette map[rune]lipgloss.Style

// palettes holds the per-game board palettes, keyed by game ID.
var palettes = map[string]Palette{
	"maze": {
		maze.PlayerChar: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		maze.WallChar:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		maze.CoinChar:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		maze.ExitChar:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	},
	"drift": {
		drift.PlayerChar: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		drift.RockChar:   lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
	},
}

// PaletteFor returns the palette registered for a game, or an empty one.
func PaletteFor(gameID string) Palette {
	if p, ok := palettes[gameID]; ok {
		return p
	}
	return Palette{}
}

// RenderBoard converts an observation's board to a styled string.
// Groups adjacent cells with the same style to minimize ANSI escape
// sequences.
func RenderBoard(obs stage.Observation, palette Palette) string {
	board := obs.Board
	var sb strings.Builder
	sb.Grow(board.Rows()*board.Cols()*2 + board.Rows())

	plain := lipgloss.NewStyle()
	for r := 0; r < board.Rows(); r++ {
		if r > 0 {
			sb.WriteRune('\n')
		}

		row := []rune(board.Row(r))
		c := 0
		for c < len(row) {
			ch := row[c]
			style, styled := palette[ch]
			if !styled {
				style = plain
			}

			// Collect consecutive cells with the same character class.
			var run strings.Builder
			for c < len(row) && sameStyle(palette, row[c], ch) {
				run.WriteRune(row[c])
				c++
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// sameStyle reports whether two characters share a palette entry (or both
// lack one).
func sameStyle(palette Palette, a, b rune) bool {
	if a == b {
		return true
	}
	_, aOK := palette[a]
	_, bOK := palette[b]
	return !aOK && !bOK
}
