package server

import (
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/moderncaliberwebdev/haus/internal/config"
)

// EngineService is the health service name reported for the game engine.
const EngineService = "haus.Engine"

// OpsServer is the gRPC operations endpoint. It serves the standard health
// service.
type OpsServer struct {
	server *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewOpsServer builds the operations server. Both the overall status and
// EngineService start as SERVING.
func NewOpsServer(cfg config.GRPCConfig, logger *zap.Logger) *OpsServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}
	if cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentStreams)))
	}

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(EngineService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return &OpsServer{server: srv, health: hs, logger: logger}
}

// Serve accepts connections on lis until Stop.
func (s *OpsServer) Serve(lis net.Listener) error {
	s.logger.Info("starting gRPC server", zap.String("address", lis.Addr().String()))
	return s.server.Serve(lis)
}

// SetServing flips the reported status of every service.
func (s *OpsServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(EngineService, status)
}

// Stop reports NOT_SERVING and drains in-flight calls.
func (s *OpsServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
