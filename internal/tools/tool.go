package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/creditwatch/internal/model"
)

// Tool is one named operation with a typed request and response.
type Tool interface {
	Name() string
	Description() string
	// Call decodes raw JSON into the tool's request type and runs it.
	Call(ctx context.Context, raw json.RawMessage) (any, error)

	addTo(srv *mcpsdk.Server, obs Observer)
}

// typedTool binds a handler to its request and response types.
type typedTool[In, Out any] struct {
	name string
	desc string
	fn   func(ctx context.Context, in In) (Out, error)
}

func newTool[In, Out any](name, desc string, fn func(ctx context.Context, in In) (Out, error)) Tool {
	return &typedTool[In, Out]{name: name, desc: desc, fn: fn}
}

func (t *typedTool[In, Out]) Name() string        { return t.name }
func (t *typedTool[In, Out]) Description() string { return t.desc }

func (t *typedTool[In, Out]) Call(ctx context.Context, raw json.RawMessage) (any, error) {
	var in In
	if err := decodeStrict(raw, &in); err != nil {
		return nil, err
	}
	out, err := t.fn(ctx, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decodeStrict unmarshals a JSON object, rejecting unknown fields. Empty
// input decodes as an empty object.
func decodeStrict(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return model.Invalid("input", "%s", decodeReason(err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return model.Invalid("input", "trailing data after JSON object")
	}
	return nil
}

func decodeReason(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("field %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return err.Error()
}

// required collects the first absent required field while reading a
// request. Reads after the first miss return zero values.
type required struct {
	err error
}

func (r *required) num(field string, p *float64) float64 {
	if r.err != nil {
		return 0
	}
	if p == nil {
		r.err = model.Missing(field)
		return 0
	}
	return *p
}

func (r *required) integer(field string, p *int) int {
	if r.err != nil {
		return 0
	}
	if p == nil {
		r.err = model.Missing(field)
		return 0
	}
	return *p
}

func (r *required) str(field, s string) string {
	if r.err == nil && s == "" {
		r.err = model.Missing(field)
	}
	return s
}

func optional(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func optionalInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
