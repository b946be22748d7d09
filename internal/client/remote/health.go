package remote

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthProber asks the server's grpc.health.v1 endpoint whether the API is
// serving. The connection is lazy, so an unreachable server only fails
// Probe.
type HealthProber struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

func NewHealthProber(addr string) (*HealthProber, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &HealthProber{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Probe returns nil when the API reports SERVING.
func (p *HealthProber) Probe(ctx context.Context) error {
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: common.HealthServiceName})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: server reports %s", common.ErrNetwork, resp.Status)
	}
	return nil
}

func (p *HealthProber) Close() error {
	return p.conn.Close()
}

func mapError(err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrNetwork, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: health service not registered", common.ErrNetwork)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
