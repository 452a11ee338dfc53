package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/art"
	"github.com/vovakirdan/gridstage/internal/games/maze"
	"github.com/vovakirdan/gridstage/internal/platform/tui"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/storage"
)

var flagLevel string

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Arrows/WASD/HJKL - Move
  Space/.          - Wait a turn
  R                - Restart (after the episode ends)
  Q/Ctrl+C         - Quit

Examples:
  gridstage play maze
  gridstage play maze --level ./my-maze.yaml
  gridstage play drift --seed 42`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLevel, "level", "", "Path to custom level YAML")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'gridstage list' to see available games.")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Custom levels are only meaningful for art-based games.
	if flagLevel != "" {
		switch gameID {
		case "maze":
			maze.SetLevelPath(flagLevel)
		default:
			fmt.Fprintf(os.Stderr, "Error: game %q does not take --level\n", gameID)
			os.Exit(1)
		}
	} else if cfg.Levels != "" && gameID == "maze" {
		// Pick the level named after the game from the configured directory.
		if lvl, lvlErr := art.NewLoader(cfg.Levels).LoadByID(gameID); lvlErr == nil {
			maze.SetLevelPath(lvl.FilePath)
		}
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open episode database: %v\n", err)
		// Continue without storage - the game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(gameID, store, cfg.Seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}
