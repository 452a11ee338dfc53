package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/platform/tui"
	"github.com/vovakirdan/gridstage/internal/registry"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve <game>",
	Short: "Start the gridstage SSH server",
	Long: `Start an SSH server that lets users connect and play the given game.

Each SSH connection gets its own episode with a fresh seed. Episode
results are stored per-server, so all users share one board.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.gridstage/host_key

Examples:
  gridstage serve drift                        # Listen on :23234
  gridstage serve maze --ssh :2222             # Listen on port 2222
  gridstage serve drift --host-key ./host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, args []string) {
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

	address := flagSSHAddr
	if address == "" {
		address = fmt.Sprintf("%s:%d", cfg.Serve.Host, cfg.Serve.Port)
	}
	hostKey := flagHostKey
	if hostKey == "" {
		hostKey = cfg.Serve.HostKeyPath
	}

	serverCfg := tui.SSHServerConfig{
		Address:     address,
		HostKeyPath: hostKey,
		DBPath:      cfg.Database,
		GameID:      gameID,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	}

	server, err := tui.NewSSHServer(serverCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Serving %q on %s\n", gameID, serverCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
