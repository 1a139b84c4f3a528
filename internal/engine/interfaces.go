// Package engine derives the budget of a month from the ledger: available
// balances with carry-forward, the to-be-budgeted pool, month completion and
// the grouped view shown to the user.
package engine

import (
	"context"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

// BudgetStore is the part of the ledger that month completion and budget edits need.
type BudgetStore interface {
	AllCategories(ctx context.Context) ([]model.Category, error)
	BudgetsByMonth(ctx context.Context, month model.Month) ([]model.Budget, error)
	GetBudget(ctx context.Context, id int64) (*model.Budget, error)
	BudgetOf(ctx context.Context, categoryID int64, month model.Month) (*model.Budget, error)
	AddBudgets(ctx context.Context, budgets ...model.Budget) (int, error)
	UpdateBudgets(ctx context.Context, budgets ...model.Budget) error
}

// SnapshotSource is the read side of the ledger a snapshot is loaded from.
type SnapshotSource interface {
	AllGroups(ctx context.Context) ([]model.Group, error)
	AllCategories(ctx context.Context) ([]model.Category, error)
	AllBudgets(ctx context.Context) ([]model.Budget, error)
	AllTransactions(ctx context.Context) ([]model.Transaction, error)
	BudgetsJoinedWithCategory(ctx context.Context) ([]model.BudgetWithCategory, error)
	TransactionsOfEachCategory(ctx context.Context) ([]model.TransactionsOfCategory, error)
	BudgetsOfEachCategory(ctx context.Context) ([]model.BudgetsOfCategory, error)
}

// PipelineStore is everything the recompute pipeline needs from the ledger.
type PipelineStore interface {
	BudgetStore
	SnapshotSource
	Subscribe() (<-chan service.ChangeEvent, func())
}
