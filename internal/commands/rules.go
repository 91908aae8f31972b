package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/core"
	"budget/internal/rules"
)

func newRuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage categorization rules",
	}

	cmd.AddCommand(
		newRuleAddCommand(),
		newRuleListCommand(),
		newRuleDeleteCommand(),
		newRuleApplyCommand(),
	)

	return cmd
}

func newRuleAddCommand() *cobra.Command {
	var (
		pattern      string
		category     string
		amountStr    string
		toleranceStr string
		priority     int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a categorization rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rule := core.Rule{
				Pattern:   pattern,
				Category:  category,
				Tolerance: core.DefaultTolerance,
				Priority:  priority,
			}
			if amountStr != "" {
				amount, err := core.MoneyFromString(amountStr)
				if err != nil {
					return fmt.Errorf("amount %q: %w", amountStr, err)
				}
				rule.Amount = &amount
			}
			if toleranceStr != "" {
				tolerance, err := core.MoneyFromString(toleranceStr)
				if err != nil {
					return fmt.Errorf("tolerance %q: %w", toleranceStr, err)
				}
				rule.Tolerance = tolerance
			}

			id, err := a.store.AddRule(cmd.Context(), rule)
			if err != nil {
				return err
			}
			fmt.Printf("added rule %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "substring to match against descriptions, case-insensitive (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to assign on match (required)")
	cmd.Flags().StringVarP(&amountStr, "amount", "a", "", "only match transactions near this amount")
	cmd.Flags().StringVar(&toleranceStr, "tolerance", "", "amount match window (default 0.01)")
	cmd.Flags().IntVar(&priority, "priority", 0, "higher priorities are evaluated first")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRuleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ruleSet, err := a.store.Rules(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range ruleSet {
				amount := "-"
				if r.Amount != nil {
					amount = fmt.Sprintf("%s ±%s", r.Amount.Display(), r.Tolerance.String())
				}
				fmt.Printf("%4d prio=%-4d %-24s -> %-16s amount=%s\n",
					r.ID, r.Priority, r.Pattern, r.Category, amount)
			}
			return nil
		},
	}
}

func newRuleDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <pattern> <category>",
		Short: "Delete the rule identified by pattern and category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.DeleteRule(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("rule (%q, %q): %w", args[0], args[1], core.ErrNotFound)
			}
			return nil
		},
	}
}

func newRuleApplyCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply rules to stored transactions (uncategorized only, or every transaction with --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			policy := rules.OverwriteEmpty
			if all {
				policy = rules.OverwriteAll
			}

			updated, total, err := a.engine.ApplyToExisting(cmd.Context(), policy)
			if err != nil {
				return err
			}
			fmt.Printf("updated %d of %d transactions\n", updated, total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "overwrite existing categories too")

	return cmd
}
