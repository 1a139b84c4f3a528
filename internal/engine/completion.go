package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zerobudget/internal/model"
)

// MissingBudgets returns a zero budget for month for every category that has no
// row among existing. Existing rows of other months are ignored.
func MissingBudgets(month model.Month, categories []model.Category, existing []model.Budget) []model.Budget {
	has := make(map[int64]bool, len(existing))
	for _, b := range existing {
		if b.Month == month {
			has[b.CategoryID] = true
		}
	}

	var missing []model.Budget
	for _, c := range categories {
		if c.IsUnassigned() || has[c.ID] {
			continue
		}
		// Guard against duplicate categories in the input.
		has[c.ID] = true
		missing = append(missing, model.Budget{CategoryID: c.ID, Month: month, Budgeted: 0})
	}
	return missing
}

// Completer keeps one budget row per category for every month it completes.
type Completer struct {
	store BudgetStore
}

// NewCompleter creates a Completer writing to store.
func NewCompleter(store BudgetStore) *Completer {
	return &Completer{store: store}
}

// CompleteMonth creates the missing zero budgets of month in a single batch and
// returns how many rows were written. Completing a complete month writes nothing.
func (c *Completer) CompleteMonth(ctx context.Context, month model.Month) (int, error) {
	categories, err := c.store.AllCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}
	existing, err := c.store.BudgetsByMonth(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("failed to load budgets of %s: %w", month, err)
	}

	missing := MissingBudgets(month, categories, existing)
	if len(missing) == 0 {
		return 0, nil
	}

	inserted, err := c.store.AddBudgets(ctx, missing...)
	if err != nil {
		return 0, fmt.Errorf("failed to add budgets for %s: %w", month, err)
	}

	slog.Info("Completed month", "month", month.String(), "budgets_created", inserted)
	return inserted, nil
}
