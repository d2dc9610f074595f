package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"gator/service"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	svc, err := service.NewOrderService(service.Options{Logger: testr.New(t)})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	Register(gs, NewServer(svc, health.NewServer(), testr.New(t)))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestExecuteAndLookup(t *testing.T) {
	ctx := context.Background()
	client := NewClient(startServer(t))

	lines, err := client.Execute(ctx, "createOrder(1, 0, 50, 10)")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order 1 has been created - ETA: 10"}, lines)

	lines, err = client.Execute(ctx, "print(1)")
	require.NoError(t, err)
	assert.Equal(t, []string{"[1, 0, 50, 10, 10]"}, lines)

	o, err := client.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, o.AsMap()["eta"])

	_, err = client.Lookup(ctx, 2)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestExecuteRejectsMalformedLines(t *testing.T) {
	client := NewClient(startServer(t))

	for _, line := range []string{"launchRocket(1)", "createOrder(1, 2)", "print(x)"} {
		_, err := client.Execute(context.Background(), line)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), line)
	}
}

func TestQuitClosesService(t *testing.T) {
	ctx := context.Background()
	conn := startServer(t)
	client := NewClient(conn)

	_, err := client.Execute(ctx, "createOrder(1, 0, 50, 10)")
	require.NoError(t, err)

	lines, err := client.Execute(ctx, "Quit()")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order 1 has been delivered at time 10"}, lines)

	_, err = client.Execute(ctx, "print(1)")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
