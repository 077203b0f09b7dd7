// Package grpc exposes service health to other internal services.
package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service key reported for this API.
const ServiceName = "policyvault.v1.PolicyVault"

// NewServer builds a gRPC server guarded by the service token and registers
// the standard health service on it.
func NewServer(serviceToken string) (*grpc.Server, *health.Server, error) {
	auth, err := NewServiceAuth(serviceToken)
	if err != nil {
		return nil, nil, err
	}
	server := grpc.NewServer(
		grpc.UnaryInterceptor(auth.Unary()),
		grpc.StreamInterceptor(auth.Stream()),
	)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	return server, hs, nil
}

// WatchDependencies flips the service between SERVING and NOT_SERVING
// following ping, checking immediately and then every interval.
func WatchDependencies(ctx context.Context, hs *health.Server, ping func(context.Context) error, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	done := make(chan struct{})
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("dependency check failed", zap.Error(err))
			hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		check()
		for {
			select {
			case <-ctx.Done():
				hs.Shutdown()
				return
			case <-ticker.C:
				check()
			}
		}
	}()
	return done
}
