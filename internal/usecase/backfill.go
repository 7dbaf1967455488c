package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"LichessIngest/internal/domain"
)

// MonthRunner ingests a single month.
type MonthRunner interface {
	Run(ctx context.Context, month domain.Month) error
}

// Backfill drives the pipeline across a range of months, one at a time.
type Backfill struct {
	runner MonthRunner
	logger *slog.Logger
}

// NewBackfill returns a sequential range runner.
func NewBackfill(runner MonthRunner, logger *slog.Logger) *Backfill {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backfill{runner: runner, logger: logger}
}

// Run ingests every month in [from, to] oldest first and stops at the
// first month that fails.
func (b *Backfill) Run(ctx context.Context, from, to domain.Month) error {
	if b.runner == nil {
		return errors.New("backfill is missing a month runner")
	}

	months, err := domain.MonthRange(from, to)
	if err != nil {
		return err
	}

	b.logger.Info("backfill started", "from", from.String(), "to", to.String(), "months", len(months))
	for i, month := range months {
		if err := b.runner.Run(ctx, month); err != nil {
			b.logger.Warn("backfill stopped", "month", month.String(), "completed", i, "remaining", len(months)-i)
			return fmt.Errorf("backfill %s: %w", month, err)
		}
	}
	b.logger.Info("backfill complete", "months", len(months))
	return nil
}
