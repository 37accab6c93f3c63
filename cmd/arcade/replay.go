package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-verifier/internal/replay"
	"github.com/vovakirdan/arcade-verifier/internal/verify"
)

var flagReplaySeed int64

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a recorded input log",
	Long: `Replay an input log with a seed and print what the verifier would see.

The file holds either a JSON array of input events or a full submission
object with an "inputEvents" field. Use "-" to read from stdin. The log is
validated exactly as the server validates it.

Examples:
  arcade replay run.json --seed 12345
  cat submission.json | arcade replay - --seed 12345`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().Int64Var(&flagReplaySeed, "seed", 0, "Session seed the run was played with")
	_ = replayCmd.MarkFlagRequired("seed")
}

func runReplay(_ *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input log: %v\n", err)
		os.Exit(1)
	}

	rules, runnerCfg, err := loadConfigs("", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	raw := extractEvents(data)
	events, err := verify.ParseEvents(raw, rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res, err := replay.Run(rules, runnerCfg, flagReplaySeed, events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seed:      %d\n", flagReplaySeed)
	fmt.Printf("Events:    %d\n", len(events))
	fmt.Printf("Ticks:     %d (%d ms)\n", res.TotalTicks, res.DurationMs(rules))
	fmt.Printf("Score:     %d\n", res.Score)
	fmt.Printf("Distance:  %d\n", res.Distance)
	fmt.Printf("Coins:     %d\n", res.CoinsCollected)
	if res.IsDead {
		fmt.Printf("Ended:     died (%s)\n", res.DeathCause)
	} else {
		fmt.Println("Ended:     alive; the verifier would reject this run")
	}
}

// extractEvents returns the inputEvents field of a submission object, or
// data itself when it is not one.
func extractEvents(data []byte) json.RawMessage {
	var sub struct {
		InputEvents json.RawMessage `json:"inputEvents"`
	}
	if err := json.Unmarshal(data, &sub); err == nil && sub.InputEvents != nil {
		return sub.InputEvents
	}
	return data
}
