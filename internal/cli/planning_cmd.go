package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/gradeplan/internal/cli/formatter"
	"github.com/alexanderramin/gradeplan/internal/domain"
)

func newPlanningCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "planning",
		Aliases: []string{"plan"},
		Short:   "Inspect and update planning entries",
	}

	cmd.AddCommand(
		newPlanningListCmd(a),
		newPlanningEmployeeCmd(a),
		newPlanningShowCmd(a),
		newPlanningOverdueCmd(a),
		newPlanningProgressCmd(a),
		newPlanningCleanupCmd(a),
	)
	for _, action := range []domain.LifecycleAction{
		domain.ActionStart, domain.ActionPause, domain.ActionResume, domain.ActionComplete, domain.ActionCancel,
	} {
		cmd.AddCommand(newPlanningActionCmd(a, action))
	}
	return cmd
}

func employeeNames(ctx context.Context, a *App) formatter.Names {
	names := formatter.Names{}
	roster, err := a.Query.Employees(ctx)
	if err != nil {
		return names
	}
	for _, e := range roster {
		names[e.ID] = e.FullName()
	}
	return names
}

func newPlanningListCmd(a *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List planning entries for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date, a.now())
			if err != nil {
				return err
			}
			entries, err := a.Query.ListByDate(cmd.Context(), day)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header("Planning "+formatter.HumanDate(day)))
			fmt.Fprint(out, formatter.FormatEntries(entries, employeeNames(cmd.Context(), a), a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "today", "Planning date (YYYY-MM-DD, today, tomorrow)")
	return cmd
}

func newPlanningEmployeeCmd(a *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "employee EMPLOYEE_ID",
		Short: "List one employee's entries over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDay(from, a.now())
			if err != nil {
				return err
			}
			end := start.AddDate(0, 0, 6)
			if to != "" {
				if end, err = parseDay(to, a.now()); err != nil {
					return err
				}
			}
			entries, err := a.Query.ListByEmployee(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEntries(entries, employeeNames(cmd.Context(), a), a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "today", "First day of the range")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the range (default: six days after --from)")
	return cmd
}

func newPlanningShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ENTRY_ID",
		Short: "Show one planning entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.Query.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			name := employeeNames(cmd.Context(), a)[e.EmployeeID]
			if name == "" {
				name = e.EmployeeID
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEntryDetail(e, name, a.now()))
			return nil
		},
	}
}

func newPlanningOverdueCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List unfinished entries whose slot has ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			entries, err := a.Query.ListOverdue(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEntries(entries, employeeNames(cmd.Context(), a), now))
			return nil
		},
	}
}

var actionShort = map[domain.LifecycleAction]string{
	domain.ActionStart:    "Start a scheduled entry",
	domain.ActionPause:    "Pause an entry in progress",
	domain.ActionResume:   "Resume a paused entry",
	domain.ActionComplete: "Complete an entry in progress",
	domain.ActionCancel:   "Cancel an entry, freeing its order for replanning",
}

func newPlanningActionCmd(a *App, action domain.LifecycleAction) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " ENTRY_ID",
		Short: actionShort[action],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Lifecycle.Transition(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTransition(res))
			return nil
		},
	}
}

func newPlanningProgressCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress ENTRY_ID PERCENT",
		Short: "Record progress on an entry (100 completes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[1])
			}
			res, err := a.Lifecycle.UpdateProgress(cmd.Context(), args[0], pct)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTransition(res))
			return nil
		},
	}
}

func newPlanningCleanupCmd(a *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete unfinished entries in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDay(from, a.now())
			if err != nil {
				return err
			}
			end := start
			if to != "" {
				if end, err = parseDay(to, a.now()); err != nil {
					return err
				}
			}
			n, err := a.Planning.Cleanup(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d planning entries between %s and %s\n",
				n, start.Format("2006-01-02"), end.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day to clean")
	cmd.Flags().StringVar(&to, "to", "", "Last day to clean (default: --from)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
