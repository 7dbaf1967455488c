package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"LichessIngest/internal/ports"
)

// Process runs the extraction engine as a child process in a fixed working
// directory and forwards its output to the console.
type Process struct {
	dir    string
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

var _ ports.CommandRunner = (*Process)(nil)

// NewProcess builds a runner rooted at dir. nil writers default to the
// current process's stdout and stderr.
func NewProcess(dir string, stdout, stderr io.Writer, logger *slog.Logger) *Process {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Process{dir: dir, stdout: stdout, stderr: stderr, logger: logger}
}

// Run starts name with args and blocks until it exits. A bare name is looked
// up in PATH; a relative path is taken from the caller's working directory,
// not from the engine's.
func (p *Process) Run(ctx context.Context, name string, args ...string) (int, error) {
	if name == "" {
		return -1, errors.New("engine binary is not configured")
	}

	binary, err := resolveBinary(name)
	if err != nil {
		return -1, fmt.Errorf("resolve %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = p.dir
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr

	p.logger.Info("engine started", "binary", binary, "args", args, "dir", p.dir)
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("launch %s: %w", name, err)
	}

	err = cmd.Wait()
	exitCode := cmd.ProcessState.ExitCode()
	p.logger.Info("engine exited", "binary", name, "exit_code", exitCode, "duration", time.Since(start).Round(time.Millisecond))

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("wait for %s: %w", name, err)
	}
}

func resolveBinary(name string) (string, error) {
	if filepath.Base(name) == name {
		return name, nil
	}
	return filepath.Abs(name)
}
