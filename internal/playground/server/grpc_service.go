package server

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/frege/foundation/utils/stringx"
)

// PlaygroundServiceName is the fully qualified gRPC service name
const PlaygroundServiceName = "frege.playground.v1.Playground"

// RunMethod is the full method name of the Run RPC
const RunMethod = "/" + PlaygroundServiceName + "/Run"

// PlaygroundRPCServer is the gRPC surface of the playground. Requests and
// responses are google.protobuf.Struct values shaped like the WebSocket
// messages: {"source": ...} in, {"type": ..., "payload": {...}} out.
type PlaygroundRPCServer interface {
	Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var playgroundServiceDesc = grpc.ServiceDesc{
	ServiceName: PlaygroundServiceName,
	HandlerType: (*PlaygroundRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Run", Handler: runHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func runHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlaygroundRPCServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RunMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PlaygroundRPCServer).Run(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// rpcService adapts the runner to PlaygroundRPCServer
type rpcService struct {
	runner *runner
}

func (r *rpcService) Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source := req.GetFields()["source"].GetStringValue()
	if stringx.IsBlank(source) {
		return nil, status.Error(codes.InvalidArgument, "source must not be empty")
	}

	// Script failures are regular responses so that partial output survives
	typ, payload := r.runner.run(ctx, source)
	return toStruct(WSResponse{Type: typ, Payload: payload})
}

// toStruct converts a JSON-tagged value into a protobuf Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// RegisterGRPC registers the playground and the standard gRPC health
// service on gs. The health status follows the health registry and is
// refreshed every interval until Stop.
func (s *Server) RegisterGRPC(gs *grpc.Server, interval time.Duration) {
	gs.RegisterService(&playgroundServiceDesc, &rpcService{runner: s.runner})

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	if interval <= 0 {
		interval = 10 * time.Second
	}
	s.syncHealth(hs)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				hs.Shutdown()
				return
			case <-ticker.C:
				s.syncHealth(hs)
			}
		}
	}()
}

func (s *Server) syncHealth(hs *grpchealth.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	serving := healthpb.HealthCheckResponse_SERVING
	if !s.health.Check(ctx).Status.Serving() {
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", serving)
	hs.SetServingStatus(PlaygroundServiceName, serving)
}

// RemoteResult is the decoded answer of a Run RPC
type RemoteResult struct {
	Type    string
	Output  []string
	Message string
	Cached  bool
}

// RemoteRun runs source on a playground reachable through conn
func RemoteRun(ctx context.Context, conn grpc.ClientConnInterface, source string) (*RemoteResult, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"source": source})
	if err != nil {
		return nil, err
	}

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, RunMethod, req, resp); err != nil {
		return nil, err
	}

	fields := resp.GetFields()
	payload := fields["payload"].GetStructValue().GetFields()
	result := &RemoteResult{
		Type:    fields["type"].GetStringValue(),
		Message: payload["message"].GetStringValue(),
		Cached:  payload["cached"].GetBoolValue(),
	}
	for _, line := range payload["output"].GetListValue().GetValues() {
		result.Output = append(result.Output, line.GetStringValue())
	}
	return result, nil
}
