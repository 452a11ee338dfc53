package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long:  `Shows a list of all games registered on the platform.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available games:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	fmt.Printf("  %-*s  %-10s  %s\n", maxIDLen, "ID", "Pace", "Title")
	fmt.Printf("  %-*s  %-10s  %s\n", maxIDLen, "--", "----", "-----")

	for _, g := range games {
		pace := "turn-based"
		if g.TickMillis > 0 {
			pace = fmt.Sprintf("%dms tick", g.TickMillis)
		}
		fmt.Printf("  %-*s  %-10s  %s\n", maxIDLen, g.ID, pace, g.Title)
	}

	fmt.Println()
	fmt.Println("Run 'gridstage play <id>' to play a game.")
}
