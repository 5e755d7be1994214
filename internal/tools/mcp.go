package tools

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddToMCP registers every tool on an MCP server.
func (r *Registry) AddToMCP(srv *mcpsdk.Server) {
	for _, t := range r.tools {
		t.addTo(srv, r.observer)
	}
}

// addTo registers the tool on an MCP server. The SDK derives the input
// schema from In; results go out as structured JSON without an output
// schema. Handler errors surface as tool errors carrying the error text.
func (t *typedTool[In, Out]) addTo(srv *mcpsdk.Server, obs Observer) {
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        t.name,
		Description: t.desc,
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		out, err := t.fn(ctx, in)
		if obs != nil {
			obs(ctx, t.name, time.Since(start), err)
		}
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}
