package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// LogLevelEnv overrides the default log level when --log-level is unset.
const LogLevelEnv = "CREDITWATCH_LOG_LEVEL"

var (
	logLevel   string
	logFormat  string
	configPath string

	log = logrus.New()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error); default info or $"+LogLevelEnv)
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to scoring config YAML (default ~/.creditwatch/config.yaml)")
}

var rootCmd = &cobra.Command{
	Use:   "creditwatch",
	Short: "Credit risk calculators for underwriting agents",
	Long: "Deterministic loan underwriting metrics: DTI, LTV, FOIR, EMI, DSCR and\n" +
		"more, each classified into a risk category. Served over MCP, gRPC and HTTP.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogger(log, logLevel, logFormat)
	},
}

// configureLogger applies level and format. Logs always go to stderr so
// stdout stays free for command output and the MCP stdio transport.
func configureLogger(l *logrus.Logger, level, format string) error {
	l.SetOutput(os.Stderr)

	if level == "" {
		level = os.Getenv(LogLevelEnv)
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q: use text or json", format)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
