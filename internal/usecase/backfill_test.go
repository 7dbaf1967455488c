package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"LichessIngest/internal/domain"
)

type recordingRunner struct {
	failOn *domain.Month
	months []domain.Month
}

func (r *recordingRunner) Run(_ context.Context, month domain.Month) error {
	r.months = append(r.months, month)
	if r.failOn != nil && *r.failOn == month {
		return errors.New("extract failed")
	}
	return nil
}

func TestBackfillRunsMonthsInOrder(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	b := NewBackfill(runner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := b.Run(context.Background(),
		domain.Month{Year: 2022, Month: time.December},
		domain.Month{Year: 2023, Month: time.February})
	require.NoError(t, err)
	require.Equal(t, []domain.Month{
		{Year: 2022, Month: time.December},
		{Year: 2023, Month: time.January},
		{Year: 2023, Month: time.February},
	}, runner.months)
}

func TestBackfillStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	failing := domain.Month{Year: 2022, Month: time.April}
	runner := &recordingRunner{failOn: &failing}
	b := NewBackfill(runner, nil)

	err := b.Run(context.Background(),
		domain.Month{Year: 2022, Month: time.March},
		domain.Month{Year: 2022, Month: time.June})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2022-04")
	require.Len(t, runner.months, 2)
}

func TestBackfillRejectsReversedRange(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	err := NewBackfill(runner, nil).Run(context.Background(),
		domain.Month{Year: 2022, Month: time.June},
		domain.Month{Year: 2022, Month: time.March})
	require.Error(t, err)
	require.Empty(t, runner.months)
}

func TestBackfillRequiresRunner(t *testing.T) {
	t.Parallel()

	err := NewBackfill(nil, nil).Run(context.Background(),
		domain.Month{Year: 2022, Month: time.March},
		domain.Month{Year: 2022, Month: time.March})
	require.Error(t, err)
}
