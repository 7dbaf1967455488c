package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"LichessIngest/internal/domain"
)

const (
	defaultYear   = 2022
	defaultEngine = "extractor"

	configPathEnv   = "LICHESS_INGEST_CONFIG"
	engineEnv       = "LICHESS_INGEST_ENGINE"
	workDirEnv      = "LICHESS_INGEST_WORKDIR"
	logLevelEnv     = "LICHESS_INGEST_LOG_LEVEL"
	historyPathEnv  = "LICHESS_INGEST_HISTORY"
	otlpEndpointEnv = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Engine    EngineConfig    `yaml:"engine"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Transfer  TransferConfig  `yaml:"transfer"`
	History   HistoryConfig   `yaml:"history"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ArchiveConfig locates monthly archives in the repository.
type ArchiveConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Variant string `yaml:"variant"`
	Year    int    `yaml:"year"`
}

// EngineConfig names the extraction engine binary.
type EngineConfig struct {
	Binary string `yaml:"binary"`
}

// WorkspaceConfig is where archives are written and the engine runs.
type WorkspaceConfig struct {
	Dir string `yaml:"dir"`
}

// TransferConfig tunes the archive download.
type TransferConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	ProgressMB int           `yaml:"progressMb"`
}

// HistoryConfig enables the sqlite run ledger when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"serviceName"`
}

// ParsedVariant resolves the configured variant name.
func (a ArchiveConfig) ParsedVariant() (domain.Variant, error) {
	return domain.ParseVariant(a.Variant)
}

// Load reads YAML configuration (if LICHESS_INGEST_CONFIG is set) over the
// defaults and applies environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Archive.ParsedVariant(); err != nil {
		errs = append(errs, err)
	}
	if c.Archive.Year <= 0 {
		errs = append(errs, fmt.Errorf("archive year must be positive, got %d", c.Archive.Year))
	}
	if c.Archive.BaseURL == "" {
		errs = append(errs, errors.New("archive base URL is empty"))
	}
	if c.Engine.Binary == "" {
		errs = append(errs, errors.New("engine binary is empty"))
	}
	if c.Transfer.Timeout < 0 {
		errs = append(errs, errors.New("transfer timeout cannot be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(engineEnv); v != "" {
		c.Engine.Binary = v
	}

	if v := os.Getenv(workDirEnv); v != "" {
		c.Workspace.Dir = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(historyPathEnv); v != "" {
		c.History.Path = v
	}

	if v := os.Getenv(otlpEndpointEnv); v != "" {
		c.Telemetry.Endpoint = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Archive.BaseURL != "" {
		base.Archive.BaseURL = override.Archive.BaseURL
	}
	if override.Archive.Variant != "" {
		base.Archive.Variant = override.Archive.Variant
	}
	if override.Archive.Year != 0 {
		base.Archive.Year = override.Archive.Year
	}

	if override.Engine.Binary != "" {
		base.Engine.Binary = override.Engine.Binary
	}

	if override.Workspace.Dir != "" {
		base.Workspace.Dir = override.Workspace.Dir
	}

	if override.Transfer.Timeout != 0 {
		base.Transfer.Timeout = override.Transfer.Timeout
	}
	if override.Transfer.ProgressMB != 0 {
		base.Transfer.ProgressMB = override.Transfer.ProgressMB
	}

	if override.History.Path != "" {
		base.History.Path = override.History.Path
	}

	if override.Telemetry.Endpoint != "" {
		base.Telemetry.Endpoint = override.Telemetry.Endpoint
	}
	if override.Telemetry.ServiceName != "" {
		base.Telemetry.ServiceName = override.Telemetry.ServiceName
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Archive: ArchiveConfig{
			BaseURL: domain.DefaultBaseURL,
			Variant: string(domain.VariantStandard),
			Year:    defaultYear,
		},
		Engine:    EngineConfig{Binary: defaultEngine},
		Workspace: WorkspaceConfig{Dir: "."},
		Transfer:  TransferConfig{ProgressMB: 100},
		Telemetry: TelemetryConfig{ServiceName: "lichessingest"},
	}
}
