package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridstage/internal/platform/tui"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/storage"
)

var flagStats bool

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Browse recorded episodes",
	Long: `Open the interactive episode browser, or print a summary for one game.

Examples:
  gridstage scores                # Interactive browser for all games
  gridstage scores maze           # Top episodes for one game
  gridstage scores maze --stats   # Aggregate stats for one game`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagStats, "stats", false, "Print aggregate stats instead of top episodes")
}

func runScores(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening episode database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 0 {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunScoreboard(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	gameID := args[0]
	info, ok := registry.Lookup(gameID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'gridstage list' to see available games.")
		os.Exit(1)
	}

	if flagStats {
		printStats(store, info)
		return
	}
	printTopEpisodes(store, info)
}

func printTopEpisodes(store *storage.Store, info registry.Info) {
	episodes, err := store.TopEpisodes(info.ID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving episodes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Best Episodes - %s\n", info.Title)
	fmt.Println()

	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'gridstage play %s' to record the first one!\n", info.ID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-7s  %-5s  %s\n", "Rank", "Reward", "Steps", "Done", "Date")
	fmt.Printf("  %-4s  %-10s  %-7s  %-5s  %s\n", "----", "------", "-----", "----", "----")

	for i, ep := range episodes {
		done := "yes"
		if !ep.Terminated {
			done = "no"
		}
		dateStr := ep.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10.1f  %-7d  %-5s  %s\n", i+1, ep.TotalReward, ep.Steps, done, dateStr)
	}

	best, err := store.BestReward(info.ID)
	if err == nil {
		fmt.Println()
		fmt.Printf("Best: %.1f\n", best)
	}
}

func printStats(store *storage.Store, info registry.Info) {
	stats, err := store.GetGameStats(info.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stats - %s\n", info.Title)
	fmt.Println()

	if stats.Episodes == 0 {
		fmt.Println("No episodes recorded yet.")
		return
	}

	fmt.Printf("  Episodes:     %d\n", stats.Episodes)
	fmt.Printf("  Best reward:  %.1f\n", stats.BestReward)
	fmt.Printf("  Avg reward:   %.2f\n", stats.AvgReward)
	fmt.Printf("  Total reward: %.1f\n", stats.TotalReward)
	fmt.Printf("  Last played:  %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
}
