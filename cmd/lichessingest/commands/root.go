package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"LichessIngest/internal/app"
	"LichessIngest/internal/config"
	"LichessIngest/internal/domain"
	"LichessIngest/internal/logging"
)

// cli carries state shared by every sub-command.
type cli struct {
	load   func() (config.Config, error)
	stdout io.Writer
	logger *slog.Logger

	variant string
	year    int
	workDir string
	engine  string
	baseURL string
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lichessingest <MM>",
		Short: "Fetches a monthly Lichess archive, runs the extractor on it and removes it.",
		Long: "Downloads lichess_db_<variant>_rated_<YYYY>-<MM>.pgn.zst, invokes\n" +
			"`<engine> extract <file>` and deletes the archive once extraction succeeds.\n" +
			"The run stops at the first failing stage.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				month, err := domain.ParseMonthArg(a.Year(), args[0])
				if err != nil {
					return err
				}
				return a.RunMonth(ctx, month)
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.variant, "variant", "", "archive variant, one of "+variantNames()+" (default from config: standard)")
	pf.IntVar(&c.year, "year", 0, "archive year for the month argument (default from config: 2022)")
	pf.StringVar(&c.workDir, "workdir", "", "directory that holds the archive while the engine runs")
	pf.StringVar(&c.engine, "engine", "", "extraction engine binary")
	pf.StringVar(&c.baseURL, "base-url", "", "archive repository base URL")

	root.AddCommand(
		c.backfillCommand(),
		c.listCommand(),
		c.historyCommand(),
	)
	return root
}

func variantNames() string {
	names := make([]string, 0, len(domain.Variants()))
	for _, v := range domain.Variants() {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}

func (c *cli) applyFlags(cfg *config.Config) {
	if c.variant != "" {
		cfg.Archive.Variant = c.variant
	}
	if c.year != 0 {
		cfg.Archive.Year = c.year
	}
	if c.workDir != "" {
		cfg.Workspace.Dir = c.workDir
	}
	if c.engine != "" {
		cfg.Engine.Binary = c.engine
	}
	if c.baseURL != "" {
		cfg.Archive.BaseURL = c.baseURL
	}
}

func (c *cli) withApp(cmd *cobra.Command, fn func(context.Context, *app.Application) error) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	c.applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, c.logger)
	if err != nil {
		return err
	}

	runErr := fn(ctx, application)
	if closeErr := application.Close(ctx); closeErr != nil {
		c.logger.Warn("shutdown", "error", closeErr)
	}
	return runErr
}

// ExitCode maps a command error to a process exit status. An engine that
// exited non-zero passes its own status through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var extractErr *domain.ExtractionError
	if errors.As(err, &extractErr) && extractErr.ExitCode > 0 && extractErr.ExitCode < 256 {
		return extractErr.ExitCode
	}
	return 1
}

// Execute runs the CLI with args and returns the exit status.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, &cli{
		load:   config.Load,
		stdout: os.Stdout,
		logger: logging.New("info", "text"),
	}, args)
}

func execute(ctx context.Context, c *cli, args []string) int {
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(c.stdout)

	err := root.ExecuteContext(ctx)
	if err != nil {
		c.logger.Error("lichessingest failed", "error", err)
	}
	return ExitCode(err)
}
