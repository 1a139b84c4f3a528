package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/storage"
)

// TestDB is a migrated SQLite store seeded from a fixture.
type TestDB struct {
	Storage *storage.SQLiteStorage
	// Ledger holds the seeded rows with the ids the store assigned.
	Ledger Ledger
}

// SetupTestDB creates a store in a temp directory and seeds it with the
// builder's fixture (which may be nil for an empty store). It is closed when
// the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))
func SetupTestDB(t *testing.T, builder *Builder) *TestDB {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store}
	if builder != nil {
		db.Ledger = Seed(t, store, builder.Build())
	}
	return db
}

// Seed writes fixture into store and returns it with store-assigned ids.
func Seed(t *testing.T, store *storage.SQLiteStorage, fixture Ledger) Ledger {
	t.Helper()
	ctx := context.Background()

	groupIDs := make(map[int64]int64, len(fixture.Groups))
	seeded := Ledger{}
	for _, g := range fixture.Groups {
		ids, err := store.AddGroups(ctx, g)
		if err != nil {
			t.Fatalf("failed to seed group %q: %v", g.Name, err)
		}
		groupIDs[g.ID] = ids[0]
		g.ID = ids[0]
		seeded.Groups = append(seeded.Groups, g)
	}

	categoryIDs := map[int64]int64{model.UnassignedCategoryID: model.UnassignedCategoryID}
	for _, c := range fixture.Categories {
		c.GroupID = groupIDs[c.GroupID]
		ids, err := store.AddCategories(ctx, c)
		if err != nil {
			t.Fatalf("failed to seed category %q: %v", c.Name, err)
		}
		categoryIDs[c.ID] = ids[0]
		c.ID = ids[0]
		seeded.Categories = append(seeded.Categories, c)
	}

	if len(fixture.Budgets) > 0 {
		budgets := make([]model.Budget, len(fixture.Budgets))
		for i, b := range fixture.Budgets {
			b.ID = 0
			b.CategoryID = categoryIDs[b.CategoryID]
			budgets[i] = b
		}
		if _, err := store.AddBudgets(ctx, budgets...); err != nil {
			t.Fatalf("failed to seed budgets: %v", err)
		}
		all, err := store.AllBudgets(ctx)
		if err != nil {
			t.Fatalf("failed to reload budgets: %v", err)
		}
		seeded.Budgets = all
	}

	if len(fixture.Transactions) > 0 {
		transactions := make([]model.Transaction, len(fixture.Transactions))
		for i, txn := range fixture.Transactions {
			txn.ID = 0
			txn.PayeeID = 0
			txn.CategoryID = categoryIDs[txn.CategoryID]
			transactions[i] = txn
		}
		if _, err := store.AddTransactions(ctx, transactions...); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
		all, err := store.AllTransactions(ctx)
		if err != nil {
			t.Fatalf("failed to reload transactions: %v", err)
		}
		seeded.Transactions = all
	}

	return seeded
}
