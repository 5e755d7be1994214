package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	v1 "github.com/ppiankov/creditwatch/api/creditwatch/v1"
	"github.com/ppiankov/creditwatch/internal/audit"
	"github.com/ppiankov/creditwatch/internal/metrics"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testServer starts an in-process gRPC server on a random port.
func testServer(t *testing.T, cfg Config) (*Server, *grpc.ClientConn) {
	t.Helper()

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = filepath.Join(t.TempDir(), "absent.yaml")
	}
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(lis)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		srv.GracefulStop()
		t.Fatalf("dial: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		srv.GracefulStop()
		srv.Close()
	})
	return srv, conn
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func callTool(t *testing.T, client v1.RiskServiceClient, tool, input string) *v1.CallResponse {
	t.Helper()
	resp, err := client.Call(context.Background(), &v1.CallRequest{Tool: tool, Input: json.RawMessage(input)})
	if err != nil {
		t.Fatalf("Call %s: %v", tool, err)
	}
	return resp
}

func TestCallReturnsOutput(t *testing.T) {
	_, conn := testServer(t, Config{})
	client := v1.NewRiskServiceClient(conn)

	resp := callTool(t, client, "compute_debt_to_income_ratio", `{"monthly_income": 75000, "total_monthly_debt": 15000}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var out struct {
		Percentage float64 `json:"percentage"`
		Category   string  `json:"risk_category"`
	}
	if err := json.Unmarshal(resp.Output, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Percentage != 20 || out.Category != "LOW" {
		t.Errorf("expected 20%% LOW, got %v %s", out.Percentage, out.Category)
	}
	if resp.TraceID == "" {
		t.Error("expected trace_id to be set")
	}
	if resp.ConfigHash == "" {
		t.Error("expected config_hash to be set")
	}
}

func TestCallReturnsTypedError(t *testing.T) {
	_, conn := testServer(t, Config{})
	client := v1.NewRiskServiceClient(conn)

	resp := callTool(t, client, "compute_loan_to_value_ratio", `{"loan_amount": 100, "property_value": 0}`)
	if resp.Error == nil {
		t.Fatal("expected typed error")
	}
	if resp.Error.Kind != "division_by_zero" || resp.Error.Field != "property_value" {
		t.Errorf("unexpected error: %+v", resp.Error)
	}
	if len(resp.Output) != 0 {
		t.Errorf("expected no output, got %s", resp.Output)
	}

	resp = callTool(t, client, "compute_emi", `{"principal": 1000}`)
	if resp.Error == nil || resp.Error.Kind != "missing_input" {
		t.Errorf("expected missing_input, got %+v", resp.Error)
	}
}

func TestCallUnknownToolIsNotFound(t *testing.T) {
	_, conn := testServer(t, Config{})
	client := v1.NewRiskServiceClient(conn)

	_, err := client.Call(context.Background(), &v1.CallRequest{Tool: "compute_everything"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestListTools(t *testing.T) {
	_, conn := testServer(t, Config{})
	client := v1.NewRiskServiceClient(conn)

	resp, err := client.ListTools(context.Background(), &v1.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(resp.Tools) != 15 {
		t.Fatalf("expected 15 tools, got %d", len(resp.Tools))
	}
	if resp.Tools[0].Name != "compute_debt_to_income_ratio" {
		t.Errorf("unexpected first tool %q", resp.Tools[0].Name)
	}
}

func TestHealthServing(t *testing.T) {
	_, conn := testServer(t, Config{})
	hc := healthpb.NewHealthClient(conn)

	for _, svc := range []string{"", v1.ServiceName} {
		resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("health check %q: %v", svc, err)
		}
		if resp.Status != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("service %q: expected SERVING, got %v", svc, resp.Status)
		}
	}
}

func TestConcurrentCalls(t *testing.T) {
	_, conn := testServer(t, Config{})
	client := v1.NewRiskServiceClient(conn)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Call(context.Background(), &v1.CallRequest{
				Tool:  "assess_credit_score",
				Input: json.RawMessage(`{"credit_score": 720}`),
			})
			if err != nil {
				errs <- err
				return
			}
			if resp.Error != nil {
				errs <- status.Error(codes.Internal, resp.Error.Kind)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent call: %v", err)
	}
}

const partialScore = `{"credit_score": 720, "dti_percentage": 20}`

func TestReloadSwapsConfig(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "scoring:\n  missing_components: renormalize\n")
	srv, conn := testServer(t, Config{ConfigPath: path})
	client := v1.NewRiskServiceClient(conn)

	resp := callTool(t, client, "compute_total_risk_score", partialScore)
	if resp.Error != nil {
		t.Fatalf("expected renormalized score before reload, got %+v", resp.Error)
	}
	before := srv.ConfigHash()

	if err := os.WriteFile(path, []byte("scoring:\n  missing_components: reject\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := srv.ReloadConfig(); err != nil {
		t.Fatalf("ReloadConfig: %v", err)
	}
	if srv.ConfigHash() == before {
		t.Error("expected config hash to change after reload")
	}

	resp = callTool(t, client, "compute_total_risk_score", partialScore)
	if resp.Error == nil || resp.Error.Kind != "missing_input" {
		t.Fatalf("expected missing_input after reload, got %+v", resp.Error)
	}
}

func TestReloadRejectsInvalidConfig(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "scoring:\n  missing_components: reject\n")
	m := metrics.New()
	srv, conn := testServer(t, Config{ConfigPath: path, Metrics: m})
	client := v1.NewRiskServiceClient(conn)
	before := srv.ConfigHash()

	if err := os.WriteFile(path, []byte("scoring:\n  weights:\n    credit_score: 90\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := srv.ReloadConfig(); err == nil {
		t.Fatal("expected reload of invalid weights to fail")
	}
	if srv.ConfigHash() != before {
		t.Error("expected previous config to stay active")
	}

	resp := callTool(t, client, "compute_total_risk_score", partialScore)
	if resp.Error == nil || resp.Error.Kind != "missing_input" {
		t.Fatalf("expected previous reject policy to stay active, got %+v", resp.Error)
	}
}

func TestReloaderPicksUpWrites(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "scoring:\n  missing_components: renormalize\n")
	srv, _ := testServer(t, Config{ConfigPath: path})
	before := srv.ConfigHash()

	r, err := NewReloader(srv, path)
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}
	r.delay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := os.WriteFile(path, []byte("scoring:\n  missing_components: reject\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for srv.ConfigHash() == before {
		if time.Now().After(deadline) {
			t.Fatal("config was not reloaded after write")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestReloaderRequiresPath(t *testing.T) {
	srv, _ := testServer(t, Config{})
	if _, err := NewReloader(srv, ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCallsAreAudited(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	srv, conn := testServer(t, Config{AuditLogPath: auditPath})
	client := v1.NewRiskServiceClient(conn)

	client.Call(context.Background(), &v1.CallRequest{
		Tool: "assess_credit_score", Input: json.RawMessage(`{"credit_score": 720}`), TraceID: "t-fixed",
	})
	client.Call(context.Background(), &v1.CallRequest{
		Tool: "assess_credit_score", Input: json.RawMessage(`{"credit_score": 100}`), TraceID: "t-fixed",
	})

	result, err := audit.Tail(auditPath, audit.Filter{TraceID: "t-fixed"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary.Total != 2 || result.Summary.Errors != 1 {
		t.Fatalf("unexpected audit summary: %+v", result.Summary)
	}
	if result.Entries[0].ConfigHash != srv.ConfigHash() {
		t.Errorf("expected config hash %s in audit, got %s", srv.ConfigHash(), result.Entries[0].ConfigHash)
	}
}
