package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/core"
)

func newCategoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories, budget goals, and tags",
	}

	cmd.AddCommand(
		newCategoryListCommand(),
		newCategoryGoalCommand(),
		newCategoryTagsCommand(),
		newCategoryDeleteCommand(),
	)

	return cmd
}

func newCategoryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories with goals and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			names, err := a.store.AllCategories(ctx)
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

			for _, name := range names {
				goal := "-"
				if g, ok := goals[name]; ok {
					goal = g.Display()
				}
				fmt.Printf("%-24s goal=%-10s tags=%s\n", name, goal, tags[name])
			}
			return nil
		},
	}
}

func newCategoryGoalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "goal <name> <amount>",
		Short: "Set the monthly budget goal for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := core.MoneyFromString(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.store.SetBudgetGoal(cmd.Context(), args[0], goal)
		},
	}
}

func newCategoryTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <name> <tags>",
		Short: "Set comma-separated tags for a category (an income/revenue tag marks its goal as an income target)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.store.SetTags(cmd.Context(), args[0], args[1])
		},
	}
}

func newCategoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a category (transactions referencing it are untouched)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.DeleteCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("category %q: %w", args[0], core.ErrNotFound)
			}
			return nil
		},
	}
}
