// Package testutil provides ledger fixtures for tests: a fluent builder that
// produces groups, categories, budgets and transactions either in memory or
// seeded into a real SQLite store.
package testutil

import (
	"testing"
	"time"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Ledger is a complete set of ledger rows.
type Ledger struct {
	Groups       []model.Group
	Categories   []model.Category
	Budgets      []model.Budget
	Transactions []model.Transaction
}

// Category returns the category called name or fails the test.
func (l Ledger) Category(t testing.TB, name string) model.Category {
	t.Helper()
	for _, c := range l.Categories {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not in fixture", name)
	return model.Category{}
}

// CategoryID returns the id of the category called name or fails the test.
func (l Ledger) CategoryID(t testing.TB, name string) int64 {
	t.Helper()
	return l.Category(t, name).ID
}

// BudgetsByCategory groups the ledger's budgets by category, with an entry for every category.
func (l Ledger) BudgetsByCategory() map[int64][]model.Budget {
	index := make(map[int64][]model.Budget, len(l.Categories))
	for _, c := range l.Categories {
		index[c.ID] = nil
	}
	for _, b := range l.Budgets {
		index[b.CategoryID] = append(index[b.CategoryID], b)
	}
	return index
}

// TransactionsByCategory groups the ledger's categorized transactions by category,
// with an entry for every category.
func (l Ledger) TransactionsByCategory() map[int64][]model.Transaction {
	index := make(map[int64][]model.Transaction, len(l.Categories))
	for _, c := range l.Categories {
		index[c.ID] = nil
	}
	for _, txn := range l.Transactions {
		if !txn.IsUnassigned() {
			index[txn.CategoryID] = append(index[txn.CategoryID], txn)
		}
	}
	return index
}

// BudgetsWithCategory joins every budget with its category.
func (l Ledger) BudgetsWithCategory() []model.BudgetWithCategory {
	byID := make(map[int64]model.Category, len(l.Categories))
	for _, c := range l.Categories {
		byID[c.ID] = c
	}
	joined := make([]model.BudgetWithCategory, 0, len(l.Budgets))
	for _, b := range l.Budgets {
		joined = append(joined, model.BudgetWithCategory{Budget: b, Category: byID[b.CategoryID]})
	}
	return joined
}

// Month parses a YYYY-MM month or fails the test.
func Month(t testing.TB, s string) model.Month {
	t.Helper()
	m, err := model.ParseMonth(s)
	if err != nil {
		t.Fatalf("bad month %q: %v", s, err)
	}
	return m
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}
