// Package tools is the static registry of credit-risk operations. Each
// operation is a name bound at init to a typed handler; transports look
// tools up by name and never dispatch by reflection.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/creditwatch/internal/score"
)

// ErrUnknownTool is returned for a tool name that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Observer is notified after every call with its outcome.
type Observer func(ctx context.Context, tool string, elapsed time.Duration, err error)

// Info describes a registered tool.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry maps tool names to handlers.
type Registry struct {
	tools    []Tool
	byName   map[string]Tool
	scorer   *score.Scorer
	observer Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver sets the call observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// New builds the registry. The scorer backs the composite and applicant
// tools.
func New(s *score.Scorer, opts ...Option) *Registry {
	r := &Registry{scorer: s}
	for _, o := range opts {
		o(r)
	}
	r.tools = r.build()
	r.byName = make(map[string]Tool, len(r.tools))
	for _, t := range r.tools {
		if _, dup := r.byName[t.Name()]; dup {
			panic("duplicate tool " + t.Name())
		}
		r.byName[t.Name()] = t
	}
	return r
}

// Scorer returns the composite scorer the registry was built with.
func (r *Registry) Scorer() *score.Scorer {
	return r.scorer
}

// Tools lists registered tools in registration order.
func (r *Registry) Tools() []Info {
	out := make([]Info, len(r.tools))
	for i, t := range r.tools {
		out[i] = Info{Name: t.Name(), Description: t.Description()}
	}
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Call invokes a tool with a JSON request.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	start := time.Now()
	out, err := t.Call(ctx, raw)
	if r.observer != nil {
		r.observer(ctx, name, time.Since(start), err)
	}
	return out, err
}
