package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpirySweepConfig holds settings for the expiry sweeper.
type ExpirySweepConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// ExpirySweeper periodically persists the expired status of contracts past
// their end date. Reads apply expiry lazily regardless.
type ExpirySweeper struct {
	contractSvc ContractService
	cfg         ExpirySweepConfig
	log         *zap.Logger
}

// NewExpirySweeper creates a new ExpirySweeper.
func NewExpirySweeper(contractSvc ContractService, cfg ExpirySweepConfig, log *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{contractSvc: contractSvc, cfg: cfg, log: log}
}

// Start sweeps once, then on every tick until ctx is canceled. Non-positive
// settings fall back to an hourly interval and batches of 100.
func (w *ExpirySweeper) Start(ctx context.Context) {
	if w.cfg.PollInterval <= 0 {
		w.cfg.PollInterval = time.Hour
	}
	if w.cfg.BatchSize <= 0 {
		w.cfg.BatchSize = 100
	}
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.Info("expiry sweeper started",
		zap.Duration("poll_interval", w.cfg.PollInterval),
		zap.Int("batch_size", w.cfg.BatchSize),
	)

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep drains expirable contracts batch by batch.
func (w *ExpirySweeper) sweep(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.contractSvc.SweepExpired(ctx, w.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("expiry sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			w.log.Info("contracts expired", zap.Int("count", n))
		}
		if n == 0 || n < w.cfg.BatchSize {
			return
		}
	}
}
