package service

import (
	"context"
	"time"

	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

// Janitor periodically removes expired backups and idle limiter buckets.
type Janitor struct {
	store    model.BackupStore
	limiter  *AttemptLimiter
	metrics  Metrics
	logger   *logger.Logger
	interval time.Duration
	now      func() time.Time
}

func NewJanitor(store model.BackupStore, limiter *AttemptLimiter, metrics Metrics, logger *logger.Logger, interval time.Duration) *Janitor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Janitor{
		store:    store,
		limiter:  limiter,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is done. A non-positive interval disables it.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Warn("Janitor: purge disabled, non-positive interval",
			"interval", j.interval.String())
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) {
	n, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("Janitor: failed to purge expired backups",
			"error", err.Error())
	} else if n > 0 {
		j.logger.Info("Janitor: purged expired backups",
			"count", n)
		j.metrics.Purged(n)
	}

	if dropped := j.limiter.Sweep(); dropped > 0 {
		j.logger.Debug("Janitor: dropped idle limiter buckets",
			"count", dropped)
	}
}
