package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	grpcctx "github.com/dtroode/kapu-recovery/internal/api/grpc/context"
	grpcRouter "github.com/dtroode/kapu-recovery/internal/api/grpc/router"
	grpcServer "github.com/dtroode/kapu-recovery/internal/api/grpc/server"
	"github.com/dtroode/kapu-recovery/internal/api/http/handler"
	httpRouter "github.com/dtroode/kapu-recovery/internal/api/http/router"
	httpServer "github.com/dtroode/kapu-recovery/internal/api/http/server"
	"github.com/dtroode/kapu-recovery/internal/config"
	"github.com/dtroode/kapu-recovery/internal/crypto"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/mailer"
	"github.com/dtroode/kapu-recovery/internal/metrics"
	"github.com/dtroode/kapu-recovery/internal/model"
	"github.com/dtroode/kapu-recovery/internal/repository/postgres"
	"github.com/dtroode/kapu-recovery/internal/server"
	"github.com/dtroode/kapu-recovery/internal/service"
	"github.com/dtroode/kapu-recovery/internal/storage/memory"
	storage "github.com/dtroode/kapu-recovery/internal/storage/minio"
	"github.com/dtroode/kapu-recovery/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	var recoveryMetrics service.Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		prom := metrics.New()
		recoveryMetrics = prom
		metricsHandler = prom.Handler()
	}

	checks := map[string]handler.Pinger{}
	var store model.BackupStore
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		defer db.Close()
		store = postgres.NewBackupRepository(db)
		checks["database"] = db
	default:
		logger.Warn("using in-memory backup store, backups are lost on restart")
		store = memory.NewBackupStore()
	}

	cipher, err := crypto.NewCipher(cfg.KDFParams())
	if err != nil {
		logger.Fatal("failed to initialize cipher", "error", err)
	}

	tokens, err := token.New(cfg.Recovery.TokenStrategy)
	if err != nil {
		logger.Fatal("failed to initialize token generator", "error", err)
	}

	mail, err := newMailer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize mailer", "error", err)
	}

	attempts := service.NewAttemptLimiter(cfg.Rate.AttemptEvery, cfg.Rate.AttemptBurst, cfg.Rate.AttemptIdle)
	recoveryService := service.NewRecovery(store, cipher, tokens, mail, attempts, recoveryMetrics, logger,
		service.RecoveryConfig{
			BaseURL:  cfg.BaseURL(),
			TokenTTL: cfg.Recovery.TokenTTL,
		})
	janitor := service.NewJanitor(store, attempts, recoveryMetrics, logger, cfg.Recovery.PurgeInterval)

	var requestLimiter *rate.Limiter
	if cfg.Rate.RequestsPerSecond > 0 {
		requestLimiter = rate.NewLimiter(rate.Limit(cfg.Rate.RequestsPerSecond), cfg.Rate.Burst)
	}

	ctxMgr := grpcctx.NewManager()

	grpcR := grpcRouter.New(recoveryService, ctxMgr, requestLimiter, logger)
	gs := grpcR.Register()
	grpcSrv := grpcServer.NewGRPCServer(gs, fmt.Sprintf(":%s", cfg.GRPC.Port))

	httpR := httpRouter.New(recoveryService, ctxMgr, logger, httpRouter.Options{
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Limiter:      requestLimiter,
		Swagger:      cfg.HTTP.Swagger,
		Metrics:      metricsHandler,
		Health:       checks,
	})
	httpSrv := httpServer.NewHTTPServer(httpR.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	servers := []struct {
		srv model.Server
		sl  model.SecurityLayer
	}{
		{grpcSrv, server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)},
		{httpSrv, server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s.srv, s.sl)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		janitor.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	grpcR.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.srv.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.srv.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newMailer(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.Mailer, error) {
	switch cfg.Mail.Provider {
	case config.MailResend:
		return mailer.NewResend(cfg.Mail.ResendAPIKey, cfg.Mail.From), nil
	case config.MailSMTP:
		return mailer.NewSMTP(mailer.SMTPOptions{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		}), nil
	case config.MailOutbox:
		objects, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Region:    cfg.MinIO.Region,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize outbox storage: %w", err)
		}
		return mailer.NewOutbox(objects, cfg.Mail.From, cfg.Mail.OutboxPrefix), nil
	default:
		logger.Warn("using log mailer, recovery emails are not delivered")
		return mailer.NewLog(logger, os.Stderr), nil
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
