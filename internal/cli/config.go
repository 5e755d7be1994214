package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/policydiff"
)

var (
	initForce  bool
	diffImpact bool
	diffFormat string
)

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDiffCmd)
	configDiffCmd.Flags().BoolVar(&diffImpact, "impact", false, "Show built-in scenario outcomes that change")
	configDiffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "Output format (text|json)")
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default scoring config",
	Long:  "Writes a commented config.yaml with the default composite weights to\n--config, or ~/.creditwatch/config.yaml when unset.",
	RunE:  runInitConfig,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the scoring config",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the scoring config",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, hash, err := policy.LoadConfigWithHash(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%s)\n", resolvedConfigPath(), hash)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective scoring config and its hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, hash, err := policy.LoadConfigWithHash(configPath)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n# hash: %s\n%s", resolvedConfigPath(), hash, data)
		return nil
	},
}

var configDiffCmd = &cobra.Command{
	Use:   "diff <old.yaml> <new.yaml>",
	Short: "Compare two scoring configs",
	Long: "Shows weight and missing-component policy changes between two configs.\n" +
		"With --impact, the built-in scenarios are assessed under both and\n" +
		"every case whose grade or decision moves is listed.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := policydiff.LoadAndDiff(args[0], args[1], diffImpact)
		if err != nil {
			return err
		}
		if diffFormat == "json" {
			out, err := policydiff.FormatJSON(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), policydiff.FormatText(r))
		return nil
	},
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := resolvedConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path: set --config")
	}

	wrote, err := writeIfMissing(path, policy.DefaultConfigYAML())
	if err != nil {
		return err
	}
	if !wrote {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (use --force to overwrite).\n", path)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n\nVerify:\n  creditwatch config validate --config %s\n", path, path)
	return nil
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return policy.DefaultPath()
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
