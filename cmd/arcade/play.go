package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-verifier/internal/client"
	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/platform/tui"
	"github.com/vovakirdan/arcade-verifier/internal/session"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
	"github.com/vovakirdan/arcade-verifier/internal/verify"
)

var (
	flagServer string
	flagName   string
	flagHold   time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a run and submit it for verification",
	Long: `Play the runner in the terminal. The run uses a seed issued by the
verifier; when the runner dies the recorded input log is submitted and the
verdict is shown.

With --server the run is verified by a remote 'arcade serve'. Without it
the run is verified locally and recorded in the --db database.

Terminals report key presses but not releases, so a press counts as held
for --hold; keyboard auto-repeat keeps it held.

Controls:
  Up/W/Space  - Jump
  Down/S      - Duck (fast-fall in the air)
  Right/D     - Run faster
  Left/A      - Brake
  R           - New run (after the verdict)
  Q/Ctrl+C    - Quit

Examples:
  arcade play --name ada
  arcade play --server http://localhost:8080 --name ada`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagServer, "server", "", "Verifier URL (empty = verify locally)")
	playCmd.Flags().StringVar(&flagName, "name", os.Getenv("USER"), "Player name for the leaderboard")
	playCmd.Flags().DurationVar(&flagHold, "hold", tui.DefaultHold, "How long a key press counts as held")
}

func runPlay(_ *cobra.Command, _ []string) {
	if flagName == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(1)
	}

	width, height := terminalSize()
	opts := tui.Options{
		Player: flagName,
		Hold:   flagHold,
		Width:  width,
		Height: height,
	}

	var (
		backend tui.Backend
		cleanup = func() {}
	)
	if flagServer != "" {
		c, err := client.New(flagServer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Simulate with exactly what the server replays with.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		published, err := c.Rules(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not reach verifier: %v\n", err)
			os.Exit(1)
		}
		if got := config.Fingerprint(published.Rules, published.Runner); got != published.Fingerprint {
			fmt.Fprintf(os.Stderr, "Error: rules fingerprint mismatch (server %s, computed %s)\n", published.Fingerprint, got)
			os.Exit(1)
		}
		opts.Rules, opts.Runner = published.Rules, published.Runner
		backend = c
	} else {
		rules, runnerCfg, err := loadConfigs("", "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.Open(flagDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening leaderboard database: %v\n", err)
			os.Exit(1)
		}
		cleanup = func() { store.Close() }

		// The alternate screen owns the terminal, so pipeline logs are dropped.
		quiet := log.New(io.Discard)
		sessions := session.NewManager(store, rules, session.WithLogger(quiet))
		backend = tui.LocalBackend{
			Sessions: sessions,
			Pipeline: verify.NewPipeline(sessions, store, runnerCfg, quiet),
		}
		opts.Rules, opts.Runner = rules, runnerCfg
	}

	runErr := tui.Run(backend, opts)
	cleanup()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
