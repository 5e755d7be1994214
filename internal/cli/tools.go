package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/tools"
)

func init() {
	rootCmd.AddCommand(toolsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available calculators",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadRegistry(configPath)
		if err != nil {
			return err
		}
		return printTools(cmd.OutOrStdout(), reg.Tools())
	},
}

func printTools(w io.Writer, infos []tools.Info) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Description)
	}
	return tw.Flush()
}

// loadRegistry builds a local registry from the scoring config. Calls are
// logged at debug level.
func loadRegistry(path string) (*tools.Registry, string, error) {
	cfg, hash, err := policy.LoadConfigWithHash(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	scorer, err := score.FromConfig(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("build scorer: %w", err)
	}
	return tools.New(scorer, tools.WithObserver(logCall)), hash, nil
}
