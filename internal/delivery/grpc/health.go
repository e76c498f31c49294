package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name probes can ask about besides "".
const ServiceName = "farm.Storefront"

type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewServer returns a gRPC server exposing grpc.health.v1 and reflection.
func NewServer(healthServer *health.Server, logger *logrus.Logger) *grpclib.Server {
	server := grpclib.NewServer(grpclib.UnaryInterceptor(loggingInterceptor(logger)))
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	logger.Info("gRPC health and reflection services registered")
	return server
}

func loggingInterceptor(logger *logrus.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := logger.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.Warnf("gRPC call failed: %v", err)
		} else {
			entry.Debug("gRPC call completed")
		}
		return resp, err
	}
}

// HealthReporter keeps the health status in step with the database.
type HealthReporter struct {
	health *health.Server
	db     Pinger
	log    *logrus.Logger
}

func NewHealthReporter(healthServer *health.Server, db Pinger, logger *logrus.Logger) *HealthReporter {
	return &HealthReporter{health: healthServer, db: db, log: logger}
}

// Check pings the database once and publishes the result.
func (r *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := r.db.PingContext(ctx); err != nil {
		r.log.Warnf("gRPC health: database ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	r.health.SetServingStatus("", status)
	r.health.SetServingStatus(ServiceName, status)
	return status
}

// Run checks every interval until ctx is done, then marks the service as
// shutting down.
func (r *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			r.health.Shutdown()
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}
