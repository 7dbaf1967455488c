package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"LichessIngest/internal/domain"
	"LichessIngest/internal/ports"
)

// ExtractVerb is the fixed engine sub-command.
const ExtractVerb = "extract"

// PipelineDeps wires the driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Fetcher  ports.ArchiveFetcher
	Engine   ports.CommandRunner
	Recorder ports.RunRecorder
	Logger   *slog.Logger

	// EngineBinary is looked up in PATH when it is a bare name. A path with a
	// separator is relative to the process working directory, not WorkDir.
	EngineBinary string
	// WorkDir holds the archive while it is processed; the engine runs there.
	WorkDir string
	BaseURL string
	Variant domain.Variant

	Now func() time.Time
}

// Pipeline runs Fetch, Extract and Cleanup for one month, in that order,
// stopping at the first failing stage.
type Pipeline struct {
	fetcher      ports.ArchiveFetcher
	engine       ports.CommandRunner
	recorder     ports.RunRecorder
	logger       *slog.Logger
	tracer       trace.Tracer
	engineBinary string
	workDir      string
	baseURL      string
	variant      domain.Variant
	now          func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		fetcher:      deps.Fetcher,
		engine:       deps.Engine,
		recorder:     deps.Recorder,
		logger:       deps.Logger,
		tracer:       otel.Tracer("LichessIngest/usecase"),
		engineBinary: deps.EngineBinary,
		workDir:      deps.WorkDir,
		baseURL:      deps.BaseURL,
		variant:      deps.Variant,
		now:          deps.Now,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.workDir == "" {
		p.workDir = "."
	}
	if p.baseURL == "" {
		p.baseURL = domain.DefaultBaseURL
	}
	if p.variant == "" {
		p.variant = domain.VariantStandard
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Archive resolves where the month's archive lives remotely and locally.
func (p *Pipeline) Archive(month domain.Month) (domain.Archive, string) {
	archive := domain.ResolveArchive(p.baseURL, p.variant, month)
	return archive, filepath.Join(p.workDir, archive.FileName)
}

// Run ingests one month. A previous successful run for the same month is
// not consulted: the archive is always fetched and extracted again.
func (p *Pipeline) Run(ctx context.Context, month domain.Month) error {
	if p.fetcher == nil || p.engine == nil {
		return errors.New("pipeline is missing a fetcher or an engine")
	}

	archive, localPath := p.Archive(month)
	run := domain.Run{
		ID:        uuid.NewString(),
		Variant:   p.variant,
		Month:     month,
		Archive:   archive.FileName,
		State:     domain.StatePending,
		StartedAt: p.now(),
	}
	log := p.logger.With("run_id", run.ID, "month", month.String(), "archive", archive.FileName)

	ctx, span := p.tracer.Start(ctx, "ingest.run", trace.WithAttributes(
		attribute.String("ingest.month", month.String()),
		attribute.String("ingest.variant", string(p.variant)),
	))
	defer span.End()

	p.begin(ctx, log, run)
	started := p.now()

	if err := p.stage(ctx, log, &run, domain.StateFetching, func(ctx context.Context) error {
		size, err := p.fetcher.Fetch(ctx, archive.URL, localPath)
		if err != nil {
			return &domain.TransferError{URL: archive.URL, Err: err}
		}
		log.Info("archive fetched", "url", archive.URL, "bytes", size)
		return nil
	}); err != nil {
		return p.fail(ctx, span, log, &run, err)
	}

	if err := p.stage(ctx, log, &run, domain.StateExtracting, func(ctx context.Context) error {
		code, err := p.engine.Run(ctx, p.engineBinary, ExtractVerb, archive.FileName)
		if err != nil {
			return &domain.ExtractionError{Archive: archive.FileName, ExitCode: -1, Err: err}
		}
		if code != 0 {
			return &domain.ExtractionError{Archive: archive.FileName, ExitCode: code}
		}
		return nil
	}); err != nil {
		log.Warn("archive kept for diagnosis", "path", localPath)
		return p.fail(ctx, span, log, &run, err)
	}

	if err := p.stage(ctx, log, &run, domain.StateCleaningUp, func(context.Context) error {
		if err := os.Remove(localPath); err != nil {
			return &domain.CleanupError{Path: localPath, Err: err}
		}
		return nil
	}); err != nil {
		return p.fail(ctx, span, log, &run, err)
	}

	p.transition(ctx, log, &run, domain.StateDone, nil)
	log.Info("run complete", "duration", p.now().Sub(started))
	return nil
}

func (p *Pipeline) stage(ctx context.Context, log *slog.Logger, run *domain.Run, state domain.RunState, fn func(context.Context) error) error {
	p.transition(ctx, log, run, state, nil)

	ctx, span := p.tracer.Start(ctx, "ingest."+string(state))
	defer span.End()

	started := p.now()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(state)+" failed")
		return err
	}
	log.Debug("stage finished", "stage", state, "duration", p.now().Sub(started))
	return nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, log *slog.Logger, run *domain.Run, err error) error {
	failedIn := run.State
	span.RecordError(err)
	span.SetStatus(codes.Error, "run failed")
	p.transition(ctx, log, run, domain.StateFailed, err)
	return fmt.Errorf("%s %s: %w", failedIn, run.Month, err)
}

func (p *Pipeline) begin(ctx context.Context, log *slog.Logger, run domain.Run) {
	log.Info("run started", "url", domain.URL(p.baseURL, run.Variant, run.Month))
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Begin(ctx, run); err != nil {
		log.Warn("record run start", "error", err)
	}
}

func (p *Pipeline) transition(ctx context.Context, log *slog.Logger, run *domain.Run, state domain.RunState, cause error) {
	run.State = state
	if cause != nil {
		run.Error = cause.Error()
		log.Warn("stage failed", "state", state, "error", cause)
	} else {
		log.Debug("state changed", "state", state)
	}
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Transition(ctx, run.ID, state, cause); err != nil {
		log.Warn("record run transition", "state", state, "error", err)
	}
}
