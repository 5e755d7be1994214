package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/client"
)

var (
	calcInput  string
	calcRemote string
)

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringVar(&calcInput, "input", "", "Tool input as a JSON object (default: read stdin)")
	calcCmd.Flags().StringVar(&calcRemote, "remote", "", "Call through a creditwatch gRPC server at host:port")
}

var calcCmd = &cobra.Command{
	Use:   "calc <tool>",
	Short: "Invoke one calculator",
	Long: "Runs a single tool with a JSON input and prints the JSON result.\n\n" +
		"Example:\n" +
		"  creditwatch calc compute_emi --input '{\"principal\":2000000,\"annual_interest_rate\":9,\"tenure_months\":240}'",
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func runCalc(cmd *cobra.Command, args []string) error {
	raw, err := readInput(calcInput, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var out json.RawMessage
	if calcRemote != "" {
		out, err = callRemote(commandContext(cmd), calcRemote, args[0], raw)
	} else {
		out, err = callLocal(commandContext(cmd), args[0], raw)
	}
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

func readInput(flag string, stdin io.Reader) (json.RawMessage, error) {
	if flag != "" {
		return json.RawMessage(flag), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return json.RawMessage(data), nil
}

func callLocal(ctx context.Context, tool string, raw json.RawMessage) (json.RawMessage, error) {
	reg, _, err := loadRegistry(configPath)
	if err != nil {
		return nil, err
	}
	out, err := reg.Call(ctx, tool, raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func callRemote(ctx context.Context, addr, tool string, raw json.RawMessage) (json.RawMessage, error) {
	c, err := client.New(addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	res, err := c.Call(ctx, tool, raw)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"trace_id":    res.TraceID,
		"config_hash": res.ConfigHash,
	}).Debug("remote call")
	return res.Output, nil
}

func logCall(_ context.Context, tool string, elapsed time.Duration, err error) {
	entry := log.WithFields(logrus.Fields{
		"tool":       tool,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Debug("tool call failed")
		return
	}
	entry.Debug("tool call")
}
