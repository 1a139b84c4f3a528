package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Snapshot is an immutable copy of everything the budget computation reads.
// The slices are never mutated after loading.
type Snapshot struct {
	Groups                 []model.Group
	Categories             []model.Category
	Budgets                []model.Budget
	Transactions           []model.Transaction
	BudgetsWithCategory    []model.BudgetWithCategory
	TransactionsOfCategory []model.TransactionsOfCategory
	BudgetsOfCategory      []model.BudgetsOfCategory
}

// Loader reads snapshots from the ledger.
type Loader struct {
	source SnapshotSource
}

// NewLoader creates a Loader reading from source.
func NewLoader(source SnapshotSource) *Loader {
	return &Loader{source: source}
}

// Load runs every query of a snapshot concurrently. The queries are not one
// transaction, so the joins may briefly disagree with the category list;
// ComputeAvailable detects that and the next change event brings a fresh snapshot.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Groups, err = l.source.AllGroups(ctx)
		return wrapLoad("groups", err)
	})
	g.Go(func() (err error) {
		snap.Categories, err = l.source.AllCategories(ctx)
		return wrapLoad("categories", err)
	})
	g.Go(func() (err error) {
		snap.Budgets, err = l.source.AllBudgets(ctx)
		return wrapLoad("budgets", err)
	})
	g.Go(func() (err error) {
		snap.Transactions, err = l.source.AllTransactions(ctx)
		return wrapLoad("transactions", err)
	})
	g.Go(func() (err error) {
		snap.BudgetsWithCategory, err = l.source.BudgetsJoinedWithCategory(ctx)
		return wrapLoad("budgets with category", err)
	})
	g.Go(func() (err error) {
		snap.TransactionsOfCategory, err = l.source.TransactionsOfEachCategory(ctx)
		return wrapLoad("transactions of each category", err)
	})
	g.Go(func() (err error) {
		snap.BudgetsOfCategory, err = l.source.BudgetsOfEachCategory(ctx)
		return wrapLoad("budgets of each category", err)
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	slog.Debug("Loaded snapshot",
		"groups", len(snap.Groups),
		"categories", len(snap.Categories),
		"budgets", len(snap.Budgets),
		"transactions", len(snap.Transactions))
	return snap, nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// ReportOrphans logs a data-integrity warning for every budget or transaction
// that points at an unknown category and returns how many there are. The
// category joins leave such rows out, so they contribute nothing to any balance.
func ReportOrphans(categories []model.Category, budgets []model.Budget, transactions []model.Transaction) int {
	known := make(map[int64]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	orphans := 0
	for _, b := range budgets {
		if !known[b.CategoryID] {
			slog.Warn("data integrity: budget references an unknown category",
				"budget_id", b.ID, "category_id", b.CategoryID, "month", b.Month.String())
			orphans++
		}
	}
	for _, t := range transactions {
		if !t.IsUnassigned() && !known[t.CategoryID] {
			slog.Warn("data integrity: transaction references an unknown category",
				"transaction_id", t.ID, "category_id", t.CategoryID)
			orphans++
		}
	}
	return orphans
}
