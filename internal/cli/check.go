package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/scenario"
	"github.com/ppiankov/creditwatch/internal/score"
)

var (
	checkScenario string
	checkBuiltin  bool
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkScenario, "scenario", "", "Glob pattern for scenario YAML files")
	checkCmd.Flags().BoolVar(&checkBuiltin, "builtin", false, "Run the built-in underwriting suites")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run underwriting assertions from scenario files",
	Long: "Loads scenario YAML files matching a glob pattern, assesses each\n" +
		"applicant with the configured weights, and compares grade, category,\n" +
		"decision or error kind against the expectation.\n\n" +
		"Exit code 0 if all cases pass, 1 if any fail.\n" +
		"Use in CI to gate changes to the scoring config.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := checkResults()
	if err != nil {
		return err
	}

	switch checkFormat {
	case "json":
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	default:
		fmt.Fprint(cmd.OutOrStdout(), scenario.FormatText(results))
	}

	if failed(results) {
		os.Exit(1)
	}
	return nil
}

func checkResults() ([]*scenario.RunResult, error) {
	if checkScenario == "" && !checkBuiltin {
		return nil, fmt.Errorf("one of --scenario or --builtin is required")
	}

	var results []*scenario.RunResult
	if checkBuiltin {
		cfg, err := policy.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		scorer, err := score.FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build scorer: %w", err)
		}
		builtin, err := scenario.RunBuiltin(scorer)
		if err != nil {
			return nil, err
		}
		results = append(results, builtin...)
	}

	if checkScenario != "" {
		matches, err := filepath.Glob(checkScenario)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no scenario files match pattern: %s", checkScenario)
		}
		for _, path := range matches {
			r, err := scenario.LoadAndRun(path, configPath)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			results = append(results, r)
		}
	}
	return results, nil
}

func failed(results []*scenario.RunResult) bool {
	for _, r := range results {
		if r.Failed > 0 {
			return true
		}
	}
	return false
}
