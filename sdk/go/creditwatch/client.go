package creditwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/creditwatch/internal/client"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/tools"
)

// Client runs calculators. Safe for concurrent use.
type Client struct {
	registry   *tools.Registry
	remote     *client.Client
	configHash string
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.remote != "" {
		rc, err := client.New(cfg.remote)
		if err != nil {
			return nil, fmt.Errorf("creditwatch: %w", err)
		}
		return &Client{remote: rc}, nil
	}

	scoringCfg, hash, err := policy.LoadConfigWithHash(cfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("creditwatch: failed to load config: %w", err)
	}
	scorer, err := score.FromConfig(scoringCfg)
	if err != nil {
		return nil, fmt.Errorf("creditwatch: failed to build scorer: %w", err)
	}

	var regOpts []tools.Option
	if cfg.logger != nil {
		l := cfg.logger
		regOpts = append(regOpts, tools.WithObserver(func(_ context.Context, tool string, elapsed time.Duration, err error) {
			entry := l.WithFields(logrus.Fields{"tool": tool, "elapsed_ms": elapsed.Milliseconds()})
			if err != nil {
				entry = entry.WithError(err)
			}
			entry.Debug("creditwatch call")
		}))
	}
	return &Client{registry: tools.New(scorer, regOpts...), configHash: hash}, nil
}

// Call runs a tool. input is marshaled to JSON; a json.RawMessage is
// passed through. The result is the tool's JSON output.
func (c *Client) Call(ctx context.Context, tool string, input any) (json.RawMessage, error) {
	raw, ok := input.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(input); err != nil {
			return nil, fmt.Errorf("creditwatch: encode input: %w", err)
		}
	}

	if c.remote != nil {
		res, err := c.remote.Call(ctx, tool, raw)
		if err != nil {
			return nil, err
		}
		return res.Output, nil
	}

	out, err := c.registry.Call(ctx, tool, raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// Assess runs every applicable calculator over an applicant.
func (c *Client) Assess(ctx context.Context, a Applicant) (Assessment, error) {
	out, err := c.Call(ctx, ToolAssessApplicant, a)
	if err != nil {
		return Assessment{}, err
	}
	var res Assessment
	if err := json.Unmarshal(out, &res); err != nil {
		return Assessment{}, fmt.Errorf("creditwatch: decode assessment: %w", err)
	}
	return res, nil
}

// Tools lists the available calculators.
func (c *Client) Tools(ctx context.Context) ([]ToolInfo, error) {
	if c.remote != nil {
		return c.remote.Tools(ctx)
	}
	return c.registry.Tools(), nil
}

// ConfigHash is the hash of the loaded scoring config. Empty for remote
// clients.
func (c *Client) ConfigHash() string {
	return c.configHash
}

// Close releases the remote connection, if any.
func (c *Client) Close() error {
	if c.remote != nil {
		return c.remote.Close()
	}
	return nil
}
