package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server is a gRPC server carrying the game and health services.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer builds the gRPC server with request metadata, logging and
// tracing instrumentation.
func NewServer(svc Service, logger zerolog.Logger, idGenerator func() (string, error)) *Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RequestMetadataInterceptor(idGenerator),
			LoggingInterceptor(logger),
		),
	)
	Register(grpcServer, svc)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{grpcServer: grpcServer, health: healthServer}
}

// Serve accepts connections on lis until ctx ends, then drains in-flight
// calls.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(lis)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// Stop closes every connection immediately.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.Stop()
}
