package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/report"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate reports over transactions and budget goals",
	}

	cmd.AddCommand(
		newReportMonthCommand(),
		newReportYearCommand(),
		newReportCompareCommand(),
		newReportProjectCommand(),
	)

	return cmd
}

func newReportMonthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Budget vs actual for one month (default: current month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anyDate := time.Now()
			if len(args) == 1 {
				parsed, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("month %q: %w", args[0], err)
				}
				anyDate = parsed
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			txs, err := a.store.ListForMonth(ctx, anyDate)
			if err != nil {
				return err
			}
			goals, err := a.store.BudgetGoals(ctx)
			if err != nil {
				return err
			}
			tags, err := a.store.Tags(ctx)
			if err != nil {
				return err
			}

			s := report.BudgetVsActual(goals, tags, txs)
			fmt.Printf("month %s\n", anyDate.Format("2006-01"))
			fmt.Printf("  budget income:  %12s\n", s.BudgetIncome.Display())
			fmt.Printf("  budget expense: %12s\n", s.BudgetExpense.Display())
			fmt.Printf("  budget balance: %12s\n", s.BudgetBalance().Display())
			fmt.Printf("  actual income:  %12s\n", s.ActualIncome.Display())
			fmt.Printf("  actual expense: %12s\n", s.ActualExpense.Display())
			fmt.Printf("  actual balance: %12s\n", s.ActualBalance().Display())
			return nil
		},
	}
}

func newReportYearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "year [YYYY]",
		Short: "Expense totals by category for one year (default: current year)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := time.Now().Year()
			if len(args) == 1 {
				if _, err := fmt.Sscanf(args[0], "%d", &year); err != nil {
					return fmt.Errorf("year %q: %w", args[0], err)
				}
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			txs, err := a.store.ListForYear(cmd.Context(), year)
			if err != nil {
				return err
			}

			totals := report.CategoryTotals(txs)
			names := make([]string, 0, len(totals))
			for name := range totals {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("expenses %d\n", year)
			for _, name := range names {
				fmt.Printf("  %-24s %12s\n", name, totals[name].Display())
			}
			return nil
		},
	}
}

func newReportCompareCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "compare [YYYY]",
		Short: "Year-over-year expense comparison against the prior year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := time.Now().Year()
			if len(args) == 1 {
				if _, err := fmt.Sscanf(args[0], "%d", &year); err != nil {
					return fmt.Errorf("year %q: %w", args[0], err)
				}
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			prevTxs, err := a.store.ListForYear(ctx, year-1)
			if err != nil {
				return err
			}
			curTxs, err := a.store.ListForYear(ctx, year)
			if err != nil {
				return err
			}

			rows, total := report.YearOverYear(prevTxs, curTxs, category)
			fmt.Printf("%-24s %12d %12d %12s %10s\n", "category", year-1, year, "diff", "change")
			for _, r := range rows {
				fmt.Printf("%-24s %12s %12s %12s %10s\n",
					r.Category, r.Previous.Display(), r.Current.Display(), r.Difference.Display(), r.Percent())
			}
			fmt.Printf("%-24s %12s %12s %12s %10s\n",
				total.Category, total.Previous.Display(), total.Current.Display(), total.Difference.Display(), total.Percent())
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "compare a single category instead of all")

	return cmd
}

func newReportProjectCommand() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project net cash flow forward from the configured budget goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			goals, err := a.store.BudgetGoals(ctx)
			if err != nil {
				return err
			}
			tags, err := a.store.Tags(ctx)
			if err != nil {
				return err
			}

			for _, p := range report.ProjectForward(goals, tags, time.Now(), months) {
				fmt.Printf("  %s %12s\n", p.Month, p.Net.Display())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 6, "number of months to project")

	return cmd
}
