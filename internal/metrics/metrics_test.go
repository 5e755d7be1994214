package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ppiankov/creditwatch/internal/model"
)

func TestObserveCountsByOutcome(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.Observe(ctx, "compute_emi", 0, nil)
	c.Observe(ctx, "compute_emi", 0, nil)
	c.Observe(ctx, "compute_emi", 0, model.Missing("principal"))

	if got := testutil.ToFloat64(c.calls.WithLabelValues("compute_emi", "ok")); got != 2 {
		t.Fatalf("expected 2 ok calls, got %v", got)
	}
	if got := testutil.ToFloat64(c.calls.WithLabelValues("compute_emi", "missing_input")); got != 1 {
		t.Fatalf("expected 1 missing_input call, got %v", got)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{model.ZeroDivisor("property_value"), "division_by_zero"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.Observe(context.Background(), "assess_applicant", 0, nil)
	c.Reload(errors.New("bad weights"))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`creditwatch_tool_calls_total{outcome="ok",tool="assess_applicant"} 1`,
		`creditwatch_config_reloads_total{result="rejected"} 1`,
		"creditwatch_tool_call_duration_seconds_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}
