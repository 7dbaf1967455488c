package commands

import (
	"context"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"LichessIngest/internal/app"
	"LichessIngest/internal/domain"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func (c *cli) listCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the months the archive repository publishes for the variant, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				months, err := a.Available(ctx)
				if err != nil {
					return err
				}
				if limit > 0 && len(months) > limit {
					months = months[:limit]
				}
				renderMonths(c.stdout, a.Variant(), months)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 24, "maximum number of months to print (0 for all)")
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Prints recent runs from the run ledger.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				runs, err := a.History(ctx, limit)
				if err != nil {
					return err
				}
				renderRuns(c.stdout, runs)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to print")
	return cmd
}

func renderMonths(out io.Writer, variant domain.Variant, months []domain.Month) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Month", "Archive"})
	for _, m := range months {
		t.AppendRow(table.Row{m.String(), domain.FileName(variant, m)})
	}
	t.AppendFooter(table.Row{"Total", len(months)})
	t.Render()
}

func renderRuns(out io.Writer, runs []domain.Run) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Started", "Month", "Variant", "State", "Duration", "Error"})
	for _, run := range runs {
		duration := ""
		if !run.FinishedAt.IsZero() {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		t.AppendRow(table.Row{
			run.StartedAt.Local().Format(time.DateTime),
			run.Month.String(),
			string(run.Variant),
			string(run.State),
			duration,
			run.Error,
		})
	}
	t.AppendFooter(table.Row{"Runs", len(runs)})
	t.Render()
}
