// Package grpcserver implements the InsightsService gRPC server.
//
// It delegates all business logic to insights.Service and handles only the
// gRPC transport concerns: metadata extraction, error mapping, and
// conversion between the domain model and google.protobuf.Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/insights-service/internal/insights"
)

// Server implements InsightsServiceServer.
type Server struct {
	svc *insights.Service
}

// NewServer constructs a gRPC Server backed by the given insights.Service.
func NewServer(svc *insights.Service) *Server {
	return &Server{svc: svc}
}

// Register mounts s on gs.
func Register(gs grpc.ServiceRegistrar, s *Server) {
	gs.RegisterService(&ServiceDesc, s)
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// GetBenchmark accepts {region, role, employmentType?, candidate?, premiums?}.
func (s *Server) GetBenchmark(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	in := insights.BenchmarkRequest{
		Region:         fields["region"].GetStringValue(),
		Role:           fields["role"].GetStringValue(),
		EmploymentType: fields["employmentType"].GetStringValue(),
	}
	if v, ok := fields["candidate"]; ok {
		n, isNum := v.GetKind().(*structpb.Value_NumberValue)
		if !isNum {
			return nil, status.Error(codes.InvalidArgument, "candidate must be a number")
		}
		in.Candidate = &n.NumberValue
	}
	for _, v := range fields["premiums"].GetListValue().GetValues() {
		in.Premiums = append(in.Premiums, v.GetStringValue())
	}

	report, err := s.svc.Benchmark(ctx, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(report)
}

// GetScorecard accepts {competitorId}.
func (s *Server) GetScorecard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orgID, err := orgIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.svc.Scorecard(ctx, orgID, req.GetFields()["competitorId"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(report)
}

// GetFunnel accepts {view?}.
func (s *Server) GetFunnel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orgID, err := orgIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.svc.Funnel(ctx, orgID, req.GetFields()["view"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(report)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// orgIDFromCtx extracts the x-org-id value forwarded by the Gateway via gRPC
// metadata.
func orgIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-org-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-org-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, insights.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var ve *insights.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	return status.Error(codes.Internal, "internal server error")
}

// toStruct converts a report to a Struct through its JSON shape, so both
// transports expose the same field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
