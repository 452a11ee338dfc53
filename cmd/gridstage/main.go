// gridstage is a terminal platform for turn-based grid-world games.
//
// Usage:
//
//	gridstage list              - List available games
//	gridstage play <game>       - Play a game
//	gridstage serve <game>      - Start SSH server for remote play
//	gridstage scores            - Browse recorded episodes
//
// Global flags:
//
//	--config <path> - Platform config file (default: ~/.gridstage/config.yaml)
//	--seed <value>  - RNG seed for reproducible episodes
//	--db <path>     - Episode database path (default: ~/.gridstage/episodes.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/config"

	// Import games to register them
	_ "github.com/vovakirdan/gridstage/internal/games/drift"
	_ "github.com/vovakirdan/gridstage/internal/games/maze"
)

var (
	// Global flags
	flagConfig string
	flagSeed   int64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridstage",
	Short: "Gridstage - turn-based grid worlds in your terminal",
	Long: `Gridstage is a terminal platform for deterministic grid-world games.
Every game runs as an episode: you steer an entity around a board, collect
reward, and the outcome lands in a local database.

Available commands:
  list     - Show all available games
  play     - Play a specific game
  serve    - Start SSH server for remote play
  scores   - Browse recorded episodes

Examples:
  gridstage list
  gridstage play maze
  gridstage play drift --seed 42
  gridstage serve drift --ssh :2222
  gridstage scores`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to platform config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to episode database")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// loadConfig resolves the platform config, letting CLI flags win over the
// file and the file win over built-in defaults.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.Database = flagDBPath
	}
	return cfg, nil
}
