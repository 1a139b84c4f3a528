package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and review transactions",
		Long: `Add, edit, delete and list transactions. Positive amounts are inflows,
negative amounts outflows. Income usually goes to "To be budgeted" (the default
category) until it is assigned through budgets.`,
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(editTransactionCmd())
	cmd.AddCommand(deleteTransactionsCmd())
	cmd.AddCommand(listTransactionsCmd())

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var (
		date        string
		payee       string
		amount      string
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  # A paycheck
  zb tx add --payee Employer --amount 2500

  # Groceries paid on the 3rd
  zb tx add --payee "Corner Market" --amount -54.20 --category Groceries --date 2024-03-03`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			when := model.NormalizeDate(time.Now())
			if date != "" {
				if when, err = parseDate(date); err != nil {
					return err
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.AllCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			categoryID, err := resolveCategoryID(categories, category)
			if err != nil {
				return err
			}

			txn := model.Transaction{
				Date:        when,
				PayeeName:   payee,
				CategoryID:  categoryID,
				Amount:      value,
				Description: description,
			}
			if err := txn.Validate(); err != nil {
				return common.NewUserError(err.Error(), err)
			}

			newPayees, err := store.AddTransactions(ctx, txn)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Recorded %s %s on %s", payee, value, when.Format(time.DateOnly))
			if len(newPayees) > 0 {
				msg += " (new payee)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVarP(&payee, "payee", "p", "", "payee name; created when new")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "signed amount, e.g. -12.50")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name or id (default: To be budgeted)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form note")
	_ = cmd.MarkFlagRequired("payee")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func editTransactionCmd() *cobra.Command {
	var (
		date        string
		payee       string
		amount      string
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long:  `Change the fields of a transaction given as flags; the others keep their value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransaction(ctx, ids[0])
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No transaction %d", ids[0]), err)
				}
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("date") {
				if txn.Date, err = parseDate(date); err != nil {
					return err
				}
			}
			if flags.Changed("amount") {
				if txn.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}
			if flags.Changed("payee") {
				txn.PayeeID = 0
				txn.PayeeName = payee
			}
			if flags.Changed("category") {
				categories, err := store.AllCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to load categories: %w", err)
				}
				if txn.CategoryID, err = resolveCategoryID(categories, category); err != nil {
					return err
				}
			}
			if flags.Changed("description") {
				txn.Description = description
			}

			if err := txn.Validate(); err != nil {
				return common.NewUserError(err.Error(), err)
			}
			if err := store.UpdateTransactions(ctx, *txn); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&payee, "payee", "p", "", "payee name; created when new")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "signed amount, e.g. -12.50")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name or id, or 'unassigned'")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form note")

	return cmd
}

func deleteTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTransactions(ctx, ids...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", len(ids))))
			return nil
		},
	}
}

func listTransactionsCmd() *cobra.Command {
	var (
		monthFlag  string
		category   string
		unassigned bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var within *model.Month
			if monthFlag != "" {
				m, err := model.ParseMonth(monthFlag)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Invalid month %q, expected YYYY-MM", monthFlag), err)
				}
				within = &m
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.AllCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			payees, err := store.AllPayees(ctx)
			if err != nil {
				return fmt.Errorf("failed to load payees: %w", err)
			}

			var transactions []model.Transaction
			switch {
			case unassigned:
				transactions, err = store.TransactionsOfCategories(ctx, model.UnassignedCategoryID)
			case category != "":
				c, findErr := findCategory(categories, category)
				if findErr != nil {
					return findErr
				}
				transactions, err = store.TransactionsOfCategories(ctx, c.ID)
			default:
				transactions, err = store.AllTransactions(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}

			byID := make(map[int64]model.Category, len(categories))
			for _, c := range categories {
				byID[c.ID] = c
			}
			payeeNames := make(map[int64]string, len(payees))
			for _, p := range payees {
				payeeNames[p.ID] = p.Name
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tPAYEE\tCATEGORY\tDESCRIPTION")
			var shown int
			var total model.Amount
			for _, t := range transactions {
				if within != nil && !within.Contains(t.Date) {
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Date.Format(time.DateOnly), t.Amount,
					payeeNames[t.PayeeID], categoryName(byID, t.CategoryID), t.Description)
				shown++
				total += t.Amount
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s %d transactions, total %s\n", cli.ChartIcon, shown, cli.FormatAmount(total))
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthFlag, "month", "m", "", "only transactions dated in this month (YYYY-MM)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only transactions of this category")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "only transactions not yet assigned to a category")

	return cmd
}
