package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

// Editor applies user edits to budget rows.
type Editor struct {
	store BudgetStore
}

// NewEditor creates an Editor writing to store.
func NewEditor(store BudgetStore) *Editor {
	return &Editor{store: store}
}

// SetBudgeted sets the budgeted amount of a budget row.
func (e *Editor) SetBudgeted(ctx context.Context, budgetID int64, amount model.Amount) error {
	b, err := e.store.GetBudget(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("failed to load budget %d: %w", budgetID, err)
	}
	if b.Budgeted == amount {
		return nil
	}

	b.Budgeted = amount
	if err := e.store.UpdateBudgets(ctx, *b); err != nil {
		return fmt.Errorf("failed to update budget %d: %w", budgetID, err)
	}
	slog.Debug("Set budgeted", "budget_id", budgetID, "amount", amount.String())
	return nil
}

// ZeroBudget sets a budget row to zero.
func (e *Editor) ZeroBudget(ctx context.Context, budgetID int64) error {
	return e.SetBudgeted(ctx, budgetID, 0)
}

// BudgetFromLastMonth copies the previous month's budgeted amount of the same
// category into the row. A previous month without a row counts as zero.
// It returns false, changing nothing, when the previous month is not in navigable.
func (e *Editor) BudgetFromLastMonth(ctx context.Context, budgetID int64, navigable []model.Month) (bool, error) {
	b, err := e.store.GetBudget(ctx, budgetID)
	if err != nil {
		return false, fmt.Errorf("failed to load budget %d: %w", budgetID, err)
	}

	previous := b.Month.AddMonths(-1)
	if !containsMonth(navigable, previous) {
		return false, nil
	}

	var amount model.Amount
	prev, err := e.store.BudgetOf(ctx, b.CategoryID, previous)
	switch {
	case errors.Is(err, common.ErrNotFound):
	case err != nil:
		return false, fmt.Errorf("failed to load budget of %s: %w", previous, err)
	default:
		amount = prev.Budgeted
	}

	if err := e.SetBudgeted(ctx, budgetID, amount); err != nil {
		return false, err
	}
	return true, nil
}

// ClearMonth sets every budget row of month to zero in one batch and returns
// how many rows changed.
func (e *Editor) ClearMonth(ctx context.Context, month model.Month) (int, error) {
	budgets, err := e.store.BudgetsByMonth(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("failed to load budgets of %s: %w", month, err)
	}

	var cleared []model.Budget
	for _, b := range budgets {
		if b.Budgeted != 0 {
			b.Budgeted = 0
			cleared = append(cleared, b)
		}
	}
	if len(cleared) == 0 {
		return 0, nil
	}

	if err := e.store.UpdateBudgets(ctx, cleared...); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", month, err)
	}
	slog.Info("Cleared month", "month", month.String(), "budgets", len(cleared))
	return len(cleared), nil
}

func containsMonth(months []model.Month, m model.Month) bool {
	for _, candidate := range months {
		if candidate == m {
			return true
		}
	}
	return false
}
