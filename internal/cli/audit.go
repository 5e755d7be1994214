package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/audit"
)

var (
	tailLines  int
	tailTrace  string
	tailTool   string
	tailSince  string
	tailUntil  string
	tailFormat string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show (0 for all)")
	auditTailCmd.Flags().StringVar(&tailTrace, "trace", "", "Only entries with this trace ID")
	auditTailCmd.Flags().StringVar(&tailTool, "tool", "", "Only entries for this tool")
	auditTailCmd.Flags().StringVar(&tailSince, "since", "", "Start time (RFC3339 or duration like 1h)")
	auditTailCmd.Flags().StringVar(&tailUntil, "until", "", "End time (RFC3339 or duration like 10m)")
	auditTailCmd.Flags().StringVarP(&tailFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and inspecting the hash-chained audit log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit log",
	Long:  "Walks the JSONL audit log and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail <path>",
	Short: "Show recent audit log entries",
	Long:  "Reads the JSONL audit log, filters by trace, tool and time range,\nand prints a timeline with an outcome summary.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTail,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])
	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	os.Exit(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	now := time.Now().UTC()
	filter := audit.Filter{TraceID: tailTrace, Tool: tailTool, Last: tailLines}

	var err error
	if filter.From, err = parseTimeFlag(tailSince, now); err != nil {
		return fmt.Errorf("invalid --since: %w", err)
	}
	if filter.To, err = parseTimeFlag(tailUntil, now); err != nil {
		return fmt.Errorf("invalid --until: %w", err)
	}

	result, err := audit.Tail(args[0], filter)
	if err != nil {
		return err
	}

	switch tailFormat {
	case "json":
		out, err := audit.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	default:
		fmt.Fprint(cmd.OutOrStdout(), audit.FormatTimeline(result))
	}
	return nil
}

// parseTimeFlag accepts RFC3339 or a duration counted back from now.
// Empty means unbounded.
func parseTimeFlag(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	return time.Parse(time.RFC3339, s)
}
