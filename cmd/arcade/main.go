// arcade runs the verified runner leaderboard: an HTTP verifier that
// replays every submitted run, and a terminal client to play against it.
//
// Usage:
//
//	arcade serve                  - Start the verifier HTTP server
//	arcade play [--server URL]    - Play a run and submit it
//	arcade scores [--server URL]  - Show the leaderboard
//	arcade replay <file> --seed N - Replay a recorded input log
//	arcade rules                  - Print the rules and their fingerprint
//
// Global flags:
//
//	--db <path>      - Set database path (default: ~/.arcade/leaderboard.db)
//	--rules <path>   - Custom rules.yaml
//	--runner <path>  - Custom runner.yaml
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arcade-verifier/internal/config"
)

var (
	// Global flags
	flagDBPath     string
	flagRulesPath  string
	flagRunnerPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Runner leaderboard with server-side replay verification",
	Long: `arcade hosts a runner leaderboard that never trusts a client's score.

Every run is played from a server-issued seed. The client submits only its
input log; the server replays it and records the score the replay produces.

Available commands:
  serve    - Start the verifier HTTP server
  play     - Play a run in the terminal and submit it
  scores   - View the leaderboard
  replay   - Replay a recorded input log offline
  rules    - Print the verification rules and runner physics

Examples:
  arcade serve
  arcade play --server http://localhost:8080 --name ada
  arcade scores --limit 20
  arcade replay run.json --seed 12345`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/leaderboard.db", "Path to leaderboard database")
	rootCmd.PersistentFlags().StringVar(&flagRulesPath, "rules", "", "Path to custom rules YAML")
	rootCmd.PersistentFlags().StringVar(&flagRunnerPath, "runner", "", "Path to custom runner physics YAML")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(rulesCmd)
}

// newLogger creates the process logger. Everything writes to stderr so
// stdout stays clean for command output.
func newLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}

// loadConfigs loads the rules and runner physics along the usual search
// order. rulesPath and runnerPath override the global flags when set.
func loadConfigs(rulesPath, runnerPath string) (config.Rules, config.Runner, error) {
	if rulesPath == "" {
		rulesPath = flagRulesPath
	}
	if runnerPath == "" {
		runnerPath = flagRunnerPath
	}
	rules, err := config.LoadRules(rulesPath)
	if err != nil {
		return config.Rules{}, config.Runner{}, err
	}
	runner, err := config.LoadRunner(runnerPath)
	if err != nil {
		return config.Rules{}, config.Runner{}, err
	}
	return rules, runner, nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a
// terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
