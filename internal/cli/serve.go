package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/metrics"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/server"
)

var (
	servePort     int
	serveAuditLog string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 50051, "gRPC listen port")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Path to audit log JSONL file")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC risk server",
	Long:  "Runs creditwatch as a central calculation server over gRPC.\nSupports hot-reload of the scoring config file.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = policy.DefaultPath()
	}

	srv, err := server.New(server.Config{
		Port:         servePort,
		ConfigPath:   path,
		AuditLogPath: serveAuditLog,
		Logger:       log,
		Metrics:      metrics.New(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := server.NewReloader(srv, path)
	if err != nil {
		log.WithError(err).Warn("hot-reload disabled")
	} else {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down risk server")
		cancel()
		srv.GracefulStop()
	}()

	log.WithFields(logrus.Fields{
		"port":        servePort,
		"config":      path,
		"config_hash": srv.ConfigHash(),
		"audit_log":   serveAuditLog,
	}).Info("creditwatch risk server listening")

	return srv.Serve()
}
