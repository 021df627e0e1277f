package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/dtroode/kapu-recovery/internal/api/http/docs"
	"github.com/dtroode/kapu-recovery/internal/api/http/handler"
	"github.com/dtroode/kapu-recovery/internal/api/http/middleware"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

// Options tunes the HTTP surface.
type Options struct {
	MaxBodyBytes int64
	// Limiter caps request rate across all API routes. Nil disables it.
	Limiter *rate.Limiter
	Swagger bool
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Health  map[string]handler.Pinger
}

// Router wires HTTP handlers and middleware for the recovery API.
type Router struct {
	recoveryService handler.RecoveryService
	contextManager  model.ContextManager
	logger          *logger.Logger
	opts            Options
}

// New creates new HTTP Router instance.
func New(
	recoveryService handler.RecoveryService,
	contextManager model.ContextManager,
	logger *logger.Logger,
	opts Options,
) *Router {
	return &Router{
		recoveryService: recoveryService,
		contextManager:  contextManager,
		logger:          logger,
		opts:            opts,
	}
}

// Register builds the handler tree.
func (r *Router) Register() http.Handler {
	mux := http.NewServeMux()

	recovery := handler.NewRecovery(r.recoveryService, r.logger)
	api := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.RateLimit(r.opts.Limiter),
			middleware.BodyLimit(r.opts.MaxBodyBytes),
		)
	}

	mux.Handle("POST /api/send-encrypted-wallet", api(recovery.SendEncryptedWallet))
	mux.Handle("POST /api/validate-recovery-token", api(recovery.ValidateRecoveryToken))
	mux.Handle("POST /api/recover-wallet", api(recovery.RecoverWallet))

	health := handler.NewHealth(r.opts.Health)
	mux.HandleFunc("GET /healthz", health.Healthz)

	if r.opts.Metrics != nil {
		mux.Handle("GET /metrics", r.opts.Metrics)
	}

	if r.opts.Swagger {
		mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	}

	return middleware.Chain(mux,
		middleware.NewRecover(r.logger).Handle,
		middleware.NewRequestID(r.contextManager).Handle,
		middleware.NewLogging(r.logger, r.contextManager).Handle,
	)
}
