package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/gateway"
	"github.com/ppiankov/creditwatch/internal/metrics"
	"github.com/ppiankov/creditwatch/internal/ratelimit"
)

var (
	gatewayAddr      string
	gatewayRateLimit int
)

func init() {
	rootCmd.AddCommand(gatewayCmd)
	gatewayCmd.Flags().StringVar(&gatewayAddr, "addr", ":8080", "HTTP listen address")
	gatewayCmd.Flags().IntVar(&gatewayRateLimit, "rate-limit", 0, "Max tool calls per client per minute (0 disables)")
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start HTTP JSON gateway",
	Long:  "Serves the calculators over HTTP: GET /v1/tools, POST /v1/tools/{name},\nPOST /v1/assess, GET /health and GET /metrics.",
	RunE:  runGateway,
}

func runGateway(cmd *cobra.Command, args []string) error {
	gw, err := gateway.New(gateway.Config{
		Addr:       gatewayAddr,
		ConfigPath: configPath,
		Version:    version,
		Logger:     log,
		Metrics:    metrics.New(),
		RateLimit:  ratelimit.Limit{MaxRequests: gatewayRateLimit, Window: time.Minute},
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return gw.ListenAndServe(ctx)
}
