package ports

import (
	"context"

	"LichessIngest/internal/domain"
)

// ArchiveFetcher copies a remote archive to a local path.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// CommandRunner launches an external program and waits for it.
// err is non-nil only when the program could not be started; otherwise
// the exit status is returned as-is.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (exitCode int, err error)
}

// RunRecorder persists run state transitions for audit.
type RunRecorder interface {
	Begin(ctx context.Context, run domain.Run) error
	Transition(ctx context.Context, runID string, state domain.RunState, cause error) error
}

// RunHistory lists previously recorded runs.
type RunHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.Run, error)
}

// Catalog lists archives published by the repository.
type Catalog interface {
	Available(ctx context.Context, variant domain.Variant) ([]domain.Month, error)
}
