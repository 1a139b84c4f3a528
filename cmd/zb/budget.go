package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

func budgetCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show and edit the budget of a month",
		Long: `Show the budget of a month: every group with its categories, what was
budgeted and what is available, and how much is left to be budgeted.

Without --month the selected month is used (see 'zb month').`,
		Example: `  # Show the selected month
  zb budget

  # Assign 250.00 to Groceries in March 2024
  zb budget set Groceries 250 --month 2024-03

  # Copy last month's amount
  zb budget from-last Rent`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBudgetShow(cmd, monthFlag)
		},
	}

	cmd.PersistentFlags().StringVarP(&monthFlag, "month", "m", "", "month to work on (YYYY-MM)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the budget of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBudgetShow(cmd, monthFlag)
		},
	})
	cmd.AddCommand(setBudgetCmd(&monthFlag))
	cmd.AddCommand(zeroBudgetCmd(&monthFlag))
	cmd.AddCommand(fromLastBudgetCmd(&monthFlag))
	cmd.AddCommand(clearBudgetCmd(&monthFlag))

	return cmd
}

func runBudgetShow(cmd *cobra.Command, monthFlag string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := s.resolveMonth(ctx, monthFlag)
	if err != nil {
		return err
	}

	result, ok, err := engine.NewPipeline(s.store).Evaluate(ctx, m)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewUserError(fmt.Sprintf("The budget of %s changed while it was read; try again", m.Label()), nil)
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderBudget(result))
	return nil
}

// budgetRow finds the budget row of a category in month, completing the month first.
func (s *session) budgetRow(cmd *cobra.Command, monthFlag, categoryRef string) (*model.Budget, model.Category, error) {
	ctx := cmd.Context()

	m, err := s.resolveMonth(ctx, monthFlag)
	if err != nil {
		return nil, model.Category{}, err
	}

	categories, err := s.store.AllCategories(ctx)
	if err != nil {
		return nil, model.Category{}, fmt.Errorf("failed to load categories: %w", err)
	}
	category, err := findCategory(categories, categoryRef)
	if err != nil {
		return nil, model.Category{}, err
	}

	if _, err := engine.NewCompleter(s.store).CompleteMonth(ctx, m); err != nil {
		return nil, model.Category{}, err
	}

	b, err := s.store.BudgetOf(ctx, category.ID, m)
	if err != nil {
		return nil, model.Category{}, fmt.Errorf("failed to load budget of %s: %w", category.Name, err)
	}
	return b, category, nil
}

func setBudgetCmd(monthFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set the budgeted amount of a category",
		Long:  `Set the budgeted amount of a category. Use -- before negative amounts.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			b, category, err := s.budgetRow(cmd, *monthFlag, args[0])
			if err != nil {
				return err
			}

			if err := engine.NewEditor(s.store).SetBudgeted(cmd.Context(), b.ID, amount); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("%s: budgeted %s in %s", category.Name, amount, b.Month.Label())))
			return nil
		},
	}
}

func zeroBudgetCmd(monthFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "zero <category>",
		Short: "Set the budgeted amount of a category to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			b, category, err := s.budgetRow(cmd, *monthFlag, args[0])
			if err != nil {
				return err
			}

			if err := engine.NewEditor(s.store).ZeroBudget(cmd.Context(), b.ID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("%s: budget zeroed in %s", category.Name, b.Month.Label())))
			return nil
		},
	}
}

func fromLastBudgetCmd(monthFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "from-last <category>",
		Short: "Budget the same amount as in the previous month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			b, category, err := s.budgetRow(cmd, *monthFlag, args[0])
			if err != nil {
				return err
			}

			copied, err := engine.NewEditor(s.store).BudgetFromLastMonth(cmd.Context(), b.ID, s.selector.AvailableMonths())
			if err != nil {
				return err
			}
			if !copied {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(
					fmt.Sprintf("%s is the first month of the budget; nothing to copy", b.Month.Label())))
				return nil
			}

			updated, err := s.store.GetBudget(cmd.Context(), b.ID)
			if err != nil {
				return fmt.Errorf("failed to reload budget: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("%s: budgeted %s in %s", category.Name, updated.Budgeted, b.Month.Label())))
			return nil
		},
	}
}

func clearBudgetCmd(monthFlag *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Set every budget of a month to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := s.resolveMonth(ctx, *monthFlag)
			if err != nil {
				return err
			}

			if !yes {
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				ok, err := reader.Confirm(ctx, cmd.OutOrStdout(), fmt.Sprintf("Set every budget of %s to 0?", m.Label()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Nothing cleared."))
					return nil
				}
			}

			n, err := engine.NewEditor(s.store).ClearMonth(ctx, m)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Cleared %d budgets of %s", n, m.Label())))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

