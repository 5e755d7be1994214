// Package client is a gRPC client for a creditwatch RiskService.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	v1 "github.com/ppiankov/creditwatch/api/creditwatch/v1"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/tools"
)

// DefaultTimeout bounds each RPC when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Client connects to a creditwatch gRPC server.
type Client struct {
	conn   *grpc.ClientConn
	client v1.RiskServiceClient
}

// New creates a client for addr. The connection is established lazily.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to risk server: %w", err)
	}
	return &Client{
		conn:   conn,
		client: v1.NewRiskServiceClient(conn),
	}, nil
}

// Result is a remote tool output with its call metadata.
type Result struct {
	Output     json.RawMessage
	TraceID    string
	ConfigHash string
}

// Call invokes a tool remotely. A typed tool failure comes back as a
// *model.Error, so errors.Is works the same as for a local call.
func (c *Client) Call(ctx context.Context, tool string, input json.RawMessage) (Result, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Call(ctx, &v1.CallRequest{Tool: tool, Input: input})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Result{}, fmt.Errorf("%w: %s", tools.ErrUnknownTool, tool)
		}
		return Result{}, fmt.Errorf("call %s: %w", tool, err)
	}
	res := Result{Output: resp.Output, TraceID: resp.TraceID, ConfigHash: resp.ConfigHash}
	if resp.Error != nil {
		return res, &model.Error{
			Kind:   model.ErrorKind(resp.Error.Kind),
			Field:  resp.Error.Field,
			Reason: resp.Error.Message,
		}
	}
	return res, nil
}

// Tools lists the tools the server exposes.
func (c *Client) Tools(ctx context.Context) ([]tools.Info, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.ListTools(ctx, &v1.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	out := make([]tools.Info, len(resp.Tools))
	for i, t := range resp.Tools {
		out[i] = tools.Info{Name: t.Name, Description: t.Description}
	}
	return out, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
