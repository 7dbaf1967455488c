package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"LichessIngest/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, engineEnv, workDirEnv, logLevelEnv, historyPathEnv, otlpEndpointEnv} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2022, cfg.Archive.Year)
	require.Equal(t, "https://database.lichess.org", cfg.Archive.BaseURL)
	require.Equal(t, "extractor", cfg.Engine.Binary)
	require.Equal(t, ".", cfg.Workspace.Dir)
	require.Empty(t, cfg.History.Path)
	require.Empty(t, cfg.Telemetry.Endpoint)

	variant, err := cfg.Archive.ParsedVariant()
	require.NoError(t, err)
	require.Equal(t, domain.VariantStandard, variant)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "ingest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
archive:
  variant: atomic
  year: 2023
engine:
  binary: ./bin/extractor
transfer:
  timeout: 2h
  progressMb: 50
history:
  path: runs.db
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(engineEnv, "/opt/extractor")
	t.Setenv(workDirEnv, "/data")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "atomic", cfg.Archive.Variant)
	require.Equal(t, 2023, cfg.Archive.Year)
	require.Equal(t, "https://database.lichess.org", cfg.Archive.BaseURL)
	require.Equal(t, "/opt/extractor", cfg.Engine.Binary)
	require.Equal(t, "/data", cfg.Workspace.Dir)
	require.Equal(t, 2*time.Hour, cfg.Transfer.Timeout)
	require.Equal(t, 50, cfg.Transfer.ProgressMB)
	require.Equal(t, "runs.db", cfg.History.Path)
}

func TestLoadRejectsUnknownVariant(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "ingest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive:\n  variant: bughouse\n"), 0o600))
	t.Setenv(configPathEnv, path)

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bughouse")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "ingest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive: [unclosed"), 0o600))
	t.Setenv(configPathEnv, path)

	_, err := Load()
	require.Error(t, err)
}
