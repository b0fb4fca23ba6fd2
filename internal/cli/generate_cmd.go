package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/cli/formatter"
)

func newGenerateCmd(a *App) *cobra.Command {
	var date, scope, policy string
	var cleanFirst bool
	var limit, timePerCard int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Allocate unplanned orders to employees for a day",
		Long: `Allocate unplanned orders to active employees for one day.

Orders are taken highest priority first, then oldest first. Each order is
sized from its card count and booked into the next free slot of the
employee chosen by the allocation policy.`,
		Example: `  gradeplan generate --date 2025-03-10
  gradeplan generate --date tomorrow --clean-first --policy round-robin
  gradeplan generate --time-per-card 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date, a.now())
			if err != nil {
				return err
			}
			req := app.NewGenerateRequest(day)
			req.Policy = policy
			req.CleanScope = app.CleanScope(scope)
			req.BatchLimit = limit
			req.TimePerCard = timePerCard
			if cmd.Flags().Changed("clean-first") {
				req.CleanFirst = &cleanFirst
			}

			res, err := a.Planning.Generate(cmd.Context(), req)
			if res != nil {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGenerateResult(res))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "today", "Planning date (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().BoolVar(&cleanFirst, "clean-first", false, "Remove existing entries for the date before planning")
	cmd.Flags().StringVar(&scope, "scope", "", "Statuses removed by --clean-first: non_terminal or scheduled")
	cmd.Flags().StringVar(&policy, "policy", "", "Allocation policy: least-loaded or round-robin")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of orders to consider (0 uses the configured batch limit)")
	cmd.Flags().IntVar(&timePerCard, "time-per-card", 0, "Minutes per card (0 uses the configured value)")
	return cmd
}
