package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"LichessIngest/internal/ports"
)

const (
	partSuffix = ".part"
	megabyte   = 1_000_000
)

// Downloader streams archives from the repository to local disk.
type Downloader struct {
	client       *resty.Client
	logger       *slog.Logger
	progressStep int64
}

var _ ports.ArchiveFetcher = (*Downloader)(nil)

// NewDownloader wires a resty client. progressMB <= 0 disables progress logs.
func NewDownloader(client *resty.Client, progressMB int, logger *slog.Logger) *Downloader {
	if client == nil {
		client = NewClient(0, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		client:       client,
		logger:       logger,
		progressStep: int64(progressMB) * megabyte,
	}
}

// Fetch downloads url into dest. Any archive already at dest is removed
// first. The body goes to dest+".part" and is renamed into place only once
// fully written, so a failed fetch leaves neither file behind.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) (int64, error) {
	if err := os.Remove(dest); err == nil {
		d.logger.Info("removed stale archive", "path", dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove stale archive: %w", err)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("request archive: %w", err)
	}
	body := resp.RawBody()
	if body == nil {
		return 0, errors.New("request archive: empty response")
	}
	defer body.Close()

	if !resp.IsSuccess() {
		return 0, fmt.Errorf("repository returned %s", resp.Status())
	}

	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("prepare directory: %w", err)
		}
	}

	part := dest + partSuffix
	written, err := d.copyTo(part, body, resp.RawResponse.ContentLength)
	if err != nil {
		if rmErr := os.Remove(part); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			d.logger.Warn("remove partial download", "path", part, "error", rmErr)
		}
		return written, err
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return written, fmt.Errorf("finalize download: %w", err)
	}
	return written, nil
}

func (d *Downloader) copyTo(path string, body io.Reader, total int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	progress := &progressWriter{
		total:  total,
		step:   d.progressStep,
		next:   d.progressStep,
		start:  time.Now(),
		logger: d.logger,
	}

	written, copyErr := io.Copy(io.MultiWriter(f, progress), body)
	closeErr := f.Close()
	if copyErr != nil {
		return written, fmt.Errorf("write archive: %w", copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close file: %w", closeErr)
	}
	if total > 0 && written != total {
		return written, fmt.Errorf("short body: got %d of %d bytes", written, total)
	}
	return written, nil
}

// progressWriter logs every step bytes with completion and a rough ETA.
type progressWriter struct {
	total   int64
	step    int64
	next    int64
	written int64
	start   time.Time
	logger  *slog.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.step <= 0 || p.written < p.next {
		return len(b), nil
	}
	for p.next <= p.written {
		p.next += p.step
	}

	elapsed := time.Since(p.start)
	args := []any{"bytes", p.written, "elapsed", elapsed.Round(time.Second)}
	if p.total > 0 {
		left := time.Duration(float64(elapsed) * float64(p.total-p.written) / float64(p.written))
		args = append(args,
			"percent", fmt.Sprintf("%.1f", float64(p.written)*100/float64(p.total)),
			"eta", left.Round(time.Second),
		)
	}
	p.logger.Info("download progress", args...)
	return len(b), nil
}
