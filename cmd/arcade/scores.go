package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-verifier/internal/client"
	"github.com/vovakirdan/arcade-verifier/internal/platform/tui"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
)

var (
	flagLimit int
	flagPlain bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top verified scores, best first. Ties go to the earlier run.

On a terminal the leaderboard opens as an interactive table; use --plain
(or pipe the output) for a text listing.

Examples:
  arcade scores
  arcade scores --limit 50 --plain
  arcade scores --server http://localhost:8080`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", storage.DefaultLimit, "Number of entries to show (max 100)")
	scoresCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a text listing instead of the table")
	scoresCmd.Flags().StringVar(&flagServer, "server", "", "Verifier URL (empty = local database)")
}

func runScores(_ *cobra.Command, _ []string) {
	if flagLimit <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --limit must be positive")
		os.Exit(1)
	}
	limit := storage.ClampLimit(flagLimit)

	var (
		fetch tui.FetchFunc
		store *storage.Store
		title = "LEADERBOARD"
	)
	if flagServer != "" {
		c, err := client.New(flagServer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fetch = c.Leaderboard
		title = "LEADERBOARD - " + flagServer
	} else {
		var err error
		store, err = storage.Open(flagDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening leaderboard database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		fetch = store.TopScores
	}

	if !flagPlain && isTerminal() {
		width, height := terminalSize()
		if err := tui.RunScoreboard(fetch, title, limit, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := fetch(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(title)
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No verified runs yet.")
		fmt.Println()
		fmt.Println("Play 'arcade play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-30s  %-8s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-30s  %-8s  %s\n", "----", "------", "-----", "----")
	for i, e := range entries {
		fmt.Printf("  %-4d  %-30s  %-8d  %s\n", i+1, e.PlayerName, e.Score, e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	if store == nil {
		return
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Best: %d  Average: %.1f", stats.Entries, stats.HighScore, stats.AvgScore)
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("  Last: %s", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}
