package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cwmcp "github.com/ppiankov/creditwatch/internal/mcp"
)

var mcpAuditLog string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to audit log JSONL file")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs creditwatch as an MCP (Model Context Protocol) server over stdio.\nExposes every calculator as a typed tool.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := cwmcp.New(cwmcp.Config{
		ConfigPath:   configPath,
		AuditLogPath: mcpAuditLog,
		Version:      version,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down MCP server")
		cancel()
	}()

	log.WithField("config_hash", srv.ConfigHash()).Info("creditwatch MCP server running on stdio")
	return srv.Run(ctx)
}
