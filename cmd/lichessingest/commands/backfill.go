package commands

import (
	"context"

	"github.com/spf13/cobra"

	"LichessIngest/internal/app"
	"LichessIngest/internal/domain"
)

func (c *cli) backfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill <YYYY-MM> <YYYY-MM>",
		Short: "Ingests every month in an inclusive range, one at a time, stopping at the first failure.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.ParseYearMonth(args[0])
			if err != nil {
				return err
			}
			to, err := domain.ParseYearMonth(args[1])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				return a.Backfill(ctx, from, to)
			})
		},
	}
}
