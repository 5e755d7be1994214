// Package gateway serves the tool registry as an HTTP JSON API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/creditwatch/internal/metrics"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/ratelimit"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/tools"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Config holds gateway configuration.
type Config struct {
	Addr       string
	ConfigPath string
	Version    string
	Logger     *logrus.Logger
	Metrics    *metrics.Collector
	// RateLimit caps tool calls per client address. Zero disables it.
	RateLimit ratelimit.Limit
}

// Gateway routes HTTP requests to the tool registry.
type Gateway struct {
	registry   *tools.Registry
	configHash string
	version    string
	log        *logrus.Logger
	metrics    *metrics.Collector
	router     *mux.Router
	addr       string
	limiter    *ratelimit.Tracker
}

// New loads configuration and builds the router.
func New(cfg Config) (*Gateway, error) {
	scoringCfg, hash, err := policy.LoadConfigWithHash(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	scorer, err := score.FromConfig(scoringCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}

	g := &Gateway{
		configHash: hash,
		version:    cfg.Version,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		addr:       cfg.Addr,
		limiter:    ratelimit.NewTracker(cfg.RateLimit),
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	if g.metrics == nil {
		g.metrics = metrics.New()
	}
	if g.version == "" {
		g.version = "dev"
	}
	g.registry = tools.New(scorer, tools.WithObserver(g.metrics.Observe))
	g.router = g.routes()
	return g, nil
}

func (g *Gateway) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(g.requestLogger)
	r.HandleFunc("/health", g.handleHealth).Methods("GET")
	r.HandleFunc("/v1/tools", g.handleListTools).Methods("GET")
	r.Handle("/v1/tools/{name}", g.rateLimiter(http.HandlerFunc(g.handleCallTool))).Methods("POST")
	r.Handle("/v1/assess", g.rateLimiter(http.HandlerFunc(g.handleAssess))).Methods("POST")
	r.Handle("/metrics", g.metrics.Handler()).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errorBody{Kind: "not_found", Message: r.URL.Path})
	})
	return r
}

// Handler returns the gateway's HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         g.addr,
		Handler:      g.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.log.WithField("addr", g.addr).Info("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	ConfigHash string `json:"config_hash"`
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		Service:    "creditwatch",
		Version:    g.version,
		ConfigHash: g.configHash,
	})
}

func (g *Gateway) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]tools.Info{"tools": g.registry.Tools()})
}

func (g *Gateway) handleCallTool(w http.ResponseWriter, r *http.Request) {
	g.call(w, r, mux.Vars(r)["name"])
}

func (g *Gateway) handleAssess(w http.ResponseWriter, r *http.Request) {
	g.call(w, r, tools.NameAssessApplicant)
}

func (g *Gateway) call(w http.ResponseWriter, r *http.Request, name string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errorBody{Kind: "request_too_large", Message: err.Error()})
		return
	}

	out, err := g.registry.Call(r.Context(), name, body)
	if err == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}

	if errors.Is(err, tools.ErrUnknownTool) {
		writeError(w, http.StatusNotFound, errorBody{Kind: "unknown_tool", Message: err.Error()})
		return
	}
	if me, ok := model.AsError(err); ok {
		writeError(w, http.StatusUnprocessableEntity, errorBody{Kind: string(me.Kind), Field: me.Field, Message: me.Reason})
		return
	}
	g.log.WithError(err).WithField("tool", name).Error("tool call failed")
	writeError(w, http.StatusInternalServerError, errorBody{Kind: "internal", Message: "internal error"})
}

type errorBody struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, code int, e errorBody) {
	writeJSON(w, code, map[string]errorBody{"error": e})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
