// Package grpc serves the standard grpc.health.v1 service. Its status
// follows a periodic database ping.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "".
const ServiceName = common.HealthServiceName

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address  string
	pinger   Pinger
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewHealthServer(a string, p Pinger, interval time.Duration, l logging.Logger) *HealthServer {
	return &HealthServer{
		address:  a,
		pinger:   p,
		interval: interval,
		logger:   l.With("module", "grpc_health"),
		health:   health.NewServer(),
	}
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// check pings the database once and publishes the result.
func (s *HealthServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if err := s.pinger.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "health check failed", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
