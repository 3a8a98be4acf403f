package jobs

import (
	"context"
	"time"

	"go-leave/internal/balance"

	"go.uber.org/zap"
)

// Scheduler drives the periodic ledger jobs. Every job is keyed by a
// reference in balance history, so at-least-once firing is safe.
type Scheduler struct {
	balances balance.Service
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(balances balance.Service, interval time.Duration, logger ...*zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	l := zap.L().Named("jobs.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("jobs.scheduler")
	}
	return &Scheduler{balances: balances, interval: interval, logger: l}
}

func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("ledger job scheduler started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("ledger job scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx, time.Now().UTC())
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if now.Day() == 1 {
		if count, err := s.balances.RunMonthlyAccrual(ctx, now.Year(), now.Month()); err != nil {
			s.logger.Error("monthly accrual job failed", zap.Error(err))
		} else {
			s.logger.Info("monthly accrual job finished", zap.Int("accrued", count))
		}
	}

	if now.Month() == time.January && now.Day() == 1 {
		if count, err := s.balances.RunCarryOver(ctx, now.Year()-1, now.Year()); err != nil {
			s.logger.Error("carry-over job failed", zap.Error(err))
		} else {
			s.logger.Info("carry-over job finished", zap.Int("rolled", count))
		}
	}

	if count, err := s.balances.RunCarryOverExpiry(ctx, now); err != nil {
		s.logger.Error("carry-over expiry job failed", zap.Error(err))
	} else if count > 0 {
		s.logger.Info("carry-over expiry job finished", zap.Int("expired", count))
	}
}
