package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/ratelimit"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/kapu-recovery/internal/api/grpc/handler"
	"github.com/dtroode/kapu-recovery/internal/api/grpc/middleware"
	"github.com/dtroode/kapu-recovery/internal/api/grpc/recoveryrpc"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

// Router represents a gRPC router for recovery operations.
// It manages service registration and middleware configuration.
type Router struct {
	recoveryService handler.RecoveryService
	contextManager  model.ContextManager
	limiter         *rate.Limiter
	logger          *logger.Logger
	health          *health.Server
}

// New creates new gRPC Router instance.
// A nil limiter disables rate limiting.
func New(
	recoveryService handler.RecoveryService,
	contextManager model.ContextManager,
	limiter *rate.Limiter,
	logger *logger.Logger,
) *Router {
	return &Router{
		recoveryService: recoveryService,
		contextManager:  contextManager,
		limiter:         limiter,
		logger:          logger,
		health:          health.NewServer(),
	}
}

// Health probes are never rate limited.
func limitMatch(_ context.Context, c interceptors.CallMeta) bool {
	return c.Service == recoveryrpc.ServiceName
}

// Register registers all gRPC services and middleware.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	requestID := middleware.NewRequestID(r.contextManager)
	logging := middleware.NewLogging(r.logger, r.contextManager)
	recoverer := middleware.NewRecover(r.logger)
	limiter := middleware.NewRateLimiter(r.limiter)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(recoverer.HandlePanic)),
			requestID.HandleGRPC,
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				ratelimit.UnaryServerInterceptor(limiter),
				selector.MatchFunc(limitMatch),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(recoverer.HandlePanic)),
		),
	)
	r.registerRecoveryRoutes(s)
	r.registerHealth(s)

	return s
}

// Shutdown marks every service as not serving.
func (r *Router) Shutdown() {
	r.health.Shutdown()
}

func (r *Router) registerRecoveryRoutes(server *grpc.Server) {
	recoveryHandler := handler.NewRecovery(r.recoveryService, r.logger)
	recoveryrpc.RegisterRecoveryServer(server, recoveryHandler)
}

func (r *Router) registerHealth(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, r.health)
	r.health.SetServingStatus(recoveryrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
}
