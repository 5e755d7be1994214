// Package creditwatchv1 defines the creditwatch.v1.RiskService wire types and
// service descriptor. Messages are plain structs carried by a JSON codec, so
// no generated protobuf code is involved.
package creditwatchv1

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "creditwatch.v1.RiskService"

// Full method names.
const (
	MethodCall      = "/" + ServiceName + "/Call"
	MethodListTools = "/" + ServiceName + "/ListTools"
)

// CallRequest invokes one tool with a JSON input object.
type CallRequest struct {
	Tool    string          `json:"tool"`
	Input   json.RawMessage `json:"input,omitempty"`
	TraceID string          `json:"trace_id,omitempty"`
}

// ToolError is a typed calculator failure.
type ToolError struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// CallResponse carries either the tool output or its typed error.
type CallResponse struct {
	Tool       string          `json:"tool"`
	Output     json.RawMessage `json:"output,omitempty"`
	Error      *ToolError      `json:"error,omitempty"`
	TraceID    string          `json:"trace_id"`
	ConfigHash string          `json:"config_hash"`
}

// ListToolsRequest is empty.
type ListToolsRequest struct{}

// ToolInfo names and describes a tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListToolsResponse lists the registered tools.
type ListToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	Call(context.Context, *CallRequest) (*CallResponse, error)
	ListTools(context.Context, *ListToolsRequest) (*ListToolsResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible defaults.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) Call(context.Context, *CallRequest) (*CallResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Call not implemented")
}
func (UnimplementedRiskServiceServer) ListTools(context.Context, *ListToolsRequest) (*ListToolsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListTools not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers srv with s.
func RegisterRiskServiceServer(s grpc.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&riskServiceDesc, srv)
}

var riskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: callHandler},
		{MethodName: "ListTools", Handler: listToolsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "creditwatch/v1/risk.proto",
}

func callHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CallRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodCall}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).Call(ctx, req.(*CallRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listToolsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListToolsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ListTools(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListTools}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).ListTools(ctx, req.(*ListToolsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// RiskServiceClient is the client API for RiskService.
type RiskServiceClient interface {
	Call(ctx context.Context, in *CallRequest, opts ...grpc.CallOption) (*CallResponse, error)
	ListTools(ctx context.Context, in *ListToolsRequest, opts ...grpc.CallOption) (*ListToolsResponse, error)
}

type riskServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRiskServiceClient returns a client that sends every call with the
// JSON content subtype.
func NewRiskServiceClient(cc grpc.ClientConnInterface) RiskServiceClient {
	return &riskServiceClient{cc: cc}
}

func (c *riskServiceClient) Call(ctx context.Context, in *CallRequest, opts ...grpc.CallOption) (*CallResponse, error) {
	out := new(CallResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, MethodCall, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *riskServiceClient) ListTools(ctx context.Context, in *ListToolsRequest, opts ...grpc.CallOption) (*ListToolsResponse, error) {
	out := new(ListToolsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, MethodListTools, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
