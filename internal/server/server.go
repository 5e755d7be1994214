// Package server exposes the tool registry as the creditwatch.v1.RiskService
// gRPC service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	v1 "github.com/ppiankov/creditwatch/api/creditwatch/v1"
	"github.com/ppiankov/creditwatch/internal/audit"
	"github.com/ppiankov/creditwatch/internal/metrics"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/tools"
)

// Config holds gRPC server configuration.
type Config struct {
	Port         int
	ConfigPath   string
	AuditLogPath string
	Logger       *logrus.Logger
	Metrics      *metrics.Collector
}

// snapshot is one loaded configuration and the registry built from it.
type snapshot struct {
	registry *tools.Registry
	hash     string
}

// Server implements RiskService.
type Server struct {
	v1.UnimplementedRiskServiceServer

	current  atomic.Pointer[snapshot]
	auditLog *audit.Log
	log      *logrus.Logger
	metrics  *metrics.Collector
	cfg      Config

	grpcServer *grpc.Server
	health     *health.Server
}

type traceKey struct{}

// New loads configuration and registers RiskService and the health service.
func New(cfg Config) (*Server, error) {
	s := &Server{
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		cfg:     cfg,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)

	if cfg.AuditLogPath != "" {
		s.auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	s.grpcServer = grpc.NewServer()
	s.health = health.NewServer()
	v1.RegisterRiskServiceServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(v1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, nil
}

func (s *Server) load() (*snapshot, error) {
	cfg, hash, err := policy.LoadConfigWithHash(s.cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	scorer, err := score.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}
	snap := &snapshot{hash: hash}
	snap.registry = tools.New(scorer, tools.WithObserver(func(ctx context.Context, tool string, elapsed time.Duration, err error) {
		s.observe(ctx, snap.hash, tool, elapsed, err)
	}))
	return snap, nil
}

// Serve listens on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.grpcServer.Serve(lis)
}

// ServeOn serves on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop marks the service not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Close cleans up resources.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// ConfigHash returns the hash of the active configuration.
func (s *Server) ConfigHash() string {
	return s.current.Load().hash
}

// Call implements the Call RPC. Tool failures are returned in the response
// body; only an unknown tool is a gRPC error.
func (s *Server) Call(ctx context.Context, req *v1.CallRequest) (*v1.CallResponse, error) {
	snap := s.current.Load()

	traceID := req.TraceID
	if traceID == "" {
		traceID = "t-" + uuid.NewString()
	}
	ctx = context.WithValue(ctx, traceKey{}, traceID)

	resp := &v1.CallResponse{Tool: req.Tool, TraceID: traceID, ConfigHash: snap.hash}

	out, err := snap.registry.Call(ctx, req.Tool, req.Input)
	if errors.Is(err, tools.ErrUnknownTool) {
		return nil, status.Errorf(codes.NotFound, "%v", err)
	}
	if err != nil {
		me, ok := model.AsError(err)
		if !ok {
			return nil, status.Errorf(codes.Internal, "%v", err)
		}
		resp.Error = &v1.ToolError{Kind: string(me.Kind), Field: me.Field, Message: me.Reason}
		return resp, nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal output: %v", err)
	}
	resp.Output = data
	return resp, nil
}

// ListTools implements the ListTools RPC.
func (s *Server) ListTools(ctx context.Context, _ *v1.ListToolsRequest) (*v1.ListToolsResponse, error) {
	infos := s.current.Load().registry.Tools()
	out := make([]v1.ToolInfo, len(infos))
	for i, info := range infos {
		out[i] = v1.ToolInfo{Name: info.Name, Description: info.Description}
	}
	return &v1.ListToolsResponse{Tools: out}, nil
}

// ReloadConfig loads the config file again and swaps it in. A config that
// fails to load or validate leaves the active one in place.
func (s *Server) ReloadConfig() error {
	snap, err := s.load()
	if s.metrics != nil {
		s.metrics.Reload(err)
	}
	if err != nil {
		return err
	}
	s.current.Store(snap)
	return nil
}

func (s *Server) observe(ctx context.Context, configHash, tool string, elapsed time.Duration, err error) {
	traceID, _ := ctx.Value(traceKey{}).(string)

	entry := s.log.WithFields(logrus.Fields{
		"tool":       tool,
		"trace_id":   traceID,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Info("tool call failed")
	} else {
		entry.Debug("tool call")
	}

	if s.metrics != nil {
		s.metrics.Observe(ctx, tool, elapsed, err)
	}
	if s.auditLog != nil {
		if aerr := s.auditLog.RecordCall(traceID, tool, configHash, elapsed, err); aerr != nil {
			s.log.WithError(aerr).Warn("audit write failed")
		}
	}
}
