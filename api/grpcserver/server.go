package grpcserver

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"gator/command"
	"gator/domain/schedule"
	"gator/infra/events"
	"gator/service"
)

// Server adapts OrderService to gRPC. All callers share one simulation;
// the service serializes their commands in arrival order.
type Server struct {
	svc    *service.OrderService
	health *health.Server
	log    logr.Logger
}

func NewServer(svc *service.OrderService, hs *health.Server, logger logr.Logger) *Server {
	return &Server{svc: svc, health: hs, log: logger}
}

// Register adds the scheduler and health services to gs and marks the
// scheduler as serving.
func Register(gs *grpc.Server, srv *Server) {
	RegisterSchedulerServer(gs, srv)
	healthpb.RegisterHealthServer(gs, srv.health)
	srv.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// -------------------- Commands --------------------

func (s *Server) Execute(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	cmd, err := command.Parse(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	lines, err := s.svc.Execute(ctx, cmd)
	if err != nil {
		return nil, s.toStatus(err)
	}

	s.log.V(1).Info("[gRPC] Execute", "cmd", cmd.String(), "lines", len(lines))

	if cmd.Kind == command.Quit {
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(lines))}
	for _, l := range lines {
		out.Values = append(out.Values, structpb.NewStringValue(l))
	}
	return out, nil
}

// -------------------- Queries --------------------

func (s *Server) Lookup(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	o, err := s.svc.Lookup(req.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return events.OrderView(o), nil
}

// -------------------- Errors --------------------

func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, schedule.ErrUnknownOrder):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.log.Error(err, "[gRPC] internal error")
		return status.Error(codes.Internal, err.Error())
	}
}
