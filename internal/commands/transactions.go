package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/core"
	"budget/internal/importer"
)

const dayLayout = "2006-01-02"

func newAddCommand() *cobra.Command {
	var (
		amountStr   string
		description string
		category    string
		typStr      string
		dateStr     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			amount, err := core.MoneyFromString(amountStr)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amountStr, err)
			}

			date := time.Now()
			if dateStr != "" {
				date, err = time.Parse(dayLayout, dateStr)
				if err != nil {
					return fmt.Errorf("date %q: %w", dateStr, err)
				}
			}

			id, err := a.service.Add(cmd.Context(), core.Transaction{
				Date:        date,
				Amount:      amount,
				Description: description,
				Category:    category,
				Type:        core.TransactionType(typStr),
			})
			if err != nil {
				return err
			}
			fmt.Printf("added transaction %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountStr, "amount", "a", "", "transaction amount (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category (resolved via rules when omitted)")
	cmd.Flags().StringVarP(&typStr, "type", "t", string(core.Expense), "income or expense")
	cmd.Flags().StringVar(&dateStr, "date", "", "date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newListCommand() *cobra.Command {
	var (
		monthStr string
		year     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions (all, or one month or year)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var txs []core.Transaction
			switch {
			case monthStr != "":
				anyDate, err := time.Parse("2006-01", monthStr)
				if err != nil {
					return fmt.Errorf("month %q: %w", monthStr, err)
				}
				txs, err = a.store.ListForMonth(ctx, anyDate)
				if err != nil {
					return err
				}
			case year != 0:
				txs, err = a.store.ListForYear(ctx, year)
				if err != nil {
					return err
				}
			default:
				txs, err = a.store.ListAll(ctx)
				if err != nil {
					return err
				}
			}

			for _, t := range txs {
				marker := " "
				if t.Ignored {
					marker = "i"
				}
				fmt.Printf("%6d %s %s %10s  %-12s %-20s %s\n",
					t.ID, marker, t.Date.Format(dayLayout), t.Amount.Display(), t.Type, t.Category, t.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "limit to one month (YYYY-MM)")
	cmd.Flags().IntVar(&year, "year", 0, "limit to one year")

	return cmd
}

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv> [file.csv...]",
		Short: "Import transactions from CSV exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			txs, rowErrs, err := importer.ParseFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, re := range rowErrs {
				fmt.Printf("skipped: %v\n", re)
			}

			summary, err := a.service.Import(cmd.Context(), txs)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d of %d transactions (%d skipped while parsing, %d while saving)\n",
				summary.Imported, summary.Total+len(rowErrs), len(rowErrs), summary.Skipped)
			return nil
		},
	}
	return cmd
}

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id %q: %w", args[0], err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.DeleteTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
			}
			fmt.Printf("deleted transaction %d\n", id)
			return nil
		},
	}
	return cmd
}

func newIgnoreCommand() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "ignore <id>",
		Short: "Exclude a transaction from aggregates (or include it again with --off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id %q: %w", args[0], err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.SetIgnored(cmd.Context(), id, !off); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "include the transaction in aggregates again")

	return cmd
}
