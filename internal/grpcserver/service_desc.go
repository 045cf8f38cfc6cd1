package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "jobmate.insights.v1.InsightsService"

// InsightsServiceServer is the server API for the InsightsService service.
type InsightsServiceServer interface {
	GetBenchmark(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetScorecard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFunnel(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod returns the "/service/method" path of an RPC.
func FullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// ServiceDesc describes InsightsService. Requests and responses are
// google.protobuf.Struct messages.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InsightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBenchmark", Handler: unary("GetBenchmark", InsightsServiceServer.GetBenchmark)},
		{MethodName: "GetScorecard", Handler: unary("GetScorecard", InsightsServiceServer.GetScorecard)},
		{MethodName: "GetFunnel", Handler: unary("GetFunnel", InsightsServiceServer.GetFunnel)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobmate/insights/v1/insights.proto",
}

type rpc func(InsightsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call rpc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InsightsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InsightsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
