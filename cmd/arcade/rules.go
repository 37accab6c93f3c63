package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/arcade-verifier/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the verification rules and runner physics",
	Long: `Print the rules and runner physics in effect, as YAML, followed by
their fingerprint. A client and a verifier with different fingerprints will
not agree on replays.

The files are looked up in order: --rules/--runner, ~/.arcade/configs/,
./configs/, then the built-in defaults. Redirect the output to start a
custom config:

  arcade rules --only runner > ~/.arcade/configs/runner.yaml`,
	Args: cobra.NoArgs,
	Run:  runRules,
}

var flagOnly string

func init() {
	rulesCmd.Flags().StringVar(&flagOnly, "only", "", "Print only one file: rules or runner")
}

func runRules(_ *cobra.Command, _ []string) {
	rules, runnerCfg, err := loadConfigs("", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var docs []any
	switch flagOnly {
	case "":
		docs = []any{rules, runnerCfg}
	case "rules":
		docs = []any{rules}
	case "runner":
		docs = []any{runnerCfg}
	default:
		fmt.Fprintf(os.Stderr, "Error: --only must be rules or runner, got %q\n", flagOnly)
		os.Exit(1)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding config: %v\n", err)
			os.Exit(1)
		}
	}
	enc.Close()

	if flagOnly == "" {
		fmt.Printf("# fingerprint: %s\n", config.Fingerprint(rules, runnerCfg))
	}
}
