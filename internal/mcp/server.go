// Package mcp serves the creditwatch tool registry over the Model Context
// Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/creditwatch/internal/audit"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/tools"
)

// Config holds MCP server configuration.
type Config struct {
	ConfigPath   string
	AuditLogPath string
	Version      string
	Logger       *logrus.Logger
}

// Server wraps the MCP SDK server around the tool registry.
type Server struct {
	mcpServer  *mcpsdk.Server
	registry   *tools.Registry
	auditLog   *audit.Log
	log        *logrus.Logger
	configHash string
	traceID    string
}

// New loads scoring configuration and registers every tool.
func New(cfg Config) (*Server, error) {
	scoringCfg, hash, err := policy.LoadConfigWithHash(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	scorer, err := score.FromConfig(scoringCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		log:        log,
		configHash: hash,
		traceID:    "t-" + uuid.NewString(),
	}

	if cfg.AuditLogPath != "" {
		s.auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	s.registry = tools.New(scorer, tools.WithObserver(s.observe))

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "creditwatch",
			Version: version,
		},
		nil,
	)
	s.registry.AddToMCP(s.mcpServer)

	log.WithFields(logrus.Fields{
		"tools":       len(s.registry.Tools()),
		"config_hash": hash,
		"trace_id":    s.traceID,
	}).Debug("mcp server ready")
	return s, nil
}

// Run serves on the stdio transport. Blocks until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// Registry returns the registry the server exposes.
func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// ConfigHash returns the hash of the loaded scoring configuration.
func (s *Server) ConfigHash() string {
	return s.configHash
}

func (s *Server) observe(_ context.Context, tool string, elapsed time.Duration, err error) {
	entry := s.log.WithFields(logrus.Fields{
		"tool":       tool,
		"elapsed_ms": elapsed.Milliseconds(),
		"trace_id":   s.traceID,
	})
	if err != nil {
		entry.WithError(err).Info("tool call failed")
	} else {
		entry.Debug("tool call")
	}

	if s.auditLog != nil {
		if aerr := s.auditLog.RecordCall(s.traceID, tool, s.configHash, elapsed, err); aerr != nil {
			s.log.WithError(aerr).Warn("audit write failed")
		}
	}
}
