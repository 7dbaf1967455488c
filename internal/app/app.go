package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"LichessIngest/internal/config"
	"LichessIngest/internal/domain"
	"LichessIngest/internal/infrastructure/catalog"
	"LichessIngest/internal/infrastructure/engine"
	"LichessIngest/internal/infrastructure/storage"
	"LichessIngest/internal/infrastructure/transfer"
	"LichessIngest/internal/logging"
	"LichessIngest/internal/ports"
	"LichessIngest/internal/telemetry"
	"LichessIngest/internal/usecase"
)

// ErrHistoryDisabled is returned by History when no ledger is configured.
var ErrHistoryDisabled = errors.New("run history is disabled; set history.path or LICHESS_INGEST_HISTORY")

// Application wires configs to use cases and adapters.
type Application struct {
	cfg       config.Config
	variant   domain.Variant
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	backfill  *usecase.Backfill
	catalog   ports.Catalog
	history   ports.RunHistory
	ledger    *storage.SQLiteLedger
	telemetry telemetry.Telemetry
}

// New builds a runnable application instance. Close must be called once the
// application is no longer needed.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	variant, err := cfg.Archive.ParsedVariant()
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	if tel.Enabled() {
		baseLogger.Info("tracing enabled", "endpoint", cfg.Telemetry.Endpoint, "service", cfg.Telemetry.ServiceName)
	}

	var (
		recorder ports.RunRecorder
		history  ports.RunHistory
		ledger   *storage.SQLiteLedger
	)
	if cfg.History.Path != "" {
		ledger, err = storage.OpenSQLiteLedger(ctx, cfg.History.Path)
		if err != nil {
			_ = tel.Shutdown(ctx)
			return nil, err
		}
		recorder, history = ledger, ledger
	}

	client := transfer.NewClient(cfg.Transfer.Timeout, baseLogger.With("component", "http"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:      transfer.NewDownloader(client, cfg.Transfer.ProgressMB, baseLogger.With("component", "transfer")),
		Engine:       engine.NewProcess(cfg.Workspace.Dir, nil, nil, baseLogger.With("component", "engine")),
		Recorder:     recorder,
		Logger:       baseLogger.With("component", "pipeline"),
		EngineBinary: cfg.Engine.Binary,
		WorkDir:      cfg.Workspace.Dir,
		BaseURL:      cfg.Archive.BaseURL,
		Variant:      variant,
	})

	return &Application{
		cfg:       cfg,
		variant:   variant,
		logger:    baseLogger,
		pipeline:  pipeline,
		backfill:  usecase.NewBackfill(pipeline, baseLogger.With("component", "backfill")),
		catalog:   catalog.NewClient(client, cfg.Archive.BaseURL, baseLogger.With("component", "catalog")),
		history:   history,
		ledger:    ledger,
		telemetry: tel,
	}, nil
}

// Variant is the archive category this application ingests.
func (a *Application) Variant() domain.Variant {
	return a.variant
}

// Year is the configured archive year used for bare month arguments.
func (a *Application) Year() int {
	return a.cfg.Archive.Year
}

// RunMonth performs a single pipeline execution.
func (a *Application) RunMonth(ctx context.Context, month domain.Month) error {
	return a.pipeline.Run(ctx, month)
}

// Backfill runs every month in [from, to] sequentially.
func (a *Application) Backfill(ctx context.Context, from, to domain.Month) error {
	return a.backfill.Run(ctx, from, to)
}

// Available lists published months for the configured variant.
func (a *Application) Available(ctx context.Context) ([]domain.Month, error) {
	return a.catalog.Available(ctx, a.variant)
}

// History returns the most recent recorded runs.
func (a *Application) History(ctx context.Context, limit int) ([]domain.Run, error) {
	if a.history == nil {
		return nil, ErrHistoryDisabled
	}
	return a.history.Recent(ctx, limit)
}

// Close flushes telemetry and releases the ledger.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ledger: %w", err))
		}
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
	}
	return errors.Join(errs...)
}
