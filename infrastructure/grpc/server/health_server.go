// Package server exposes the gRPC health protocol so that orchestrators can
// probe the platform process.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry reported for the messaging API.
const ServiceName = "flockr.Platform"

type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	log    *slog.Logger
}

func NewHealthServer(log *slog.Logger, opts ...grpc.ServerOption) *HealthServer {
	s := grpc.NewServer(opts...)
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	return &HealthServer{grpc: s, health: h, log: log}
}

// Run serves until ctx is cancelled. Both the overall status and
// ServiceName turn NOT_SERVING before the server stops gracefully.
func (s *HealthServer) Run(ctx context.Context, lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server listening", "addr", lis.Addr().String())
		for serviceName := range s.grpc.GetServiceInfo() {
			s.log.Debug("gRPC exposed service", "name", serviceName)
		}
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down gRPC health server...")
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	}
}

// SetServing flips the ServiceName status, e.g. while the state is reset.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}
