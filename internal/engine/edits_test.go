package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/testutil"
)

func budgetOf(t *testing.T, db *testutil.TestDB, category, month string) *model.Budget {
	t.Helper()
	b, err := db.Storage.BudgetOf(context.Background(), db.Ledger.CategoryID(t, category), testutil.Month(t, month))
	require.NoError(t, err)
	return b
}

func TestEditor_SetBudgeted(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))
	editor := NewEditor(db.Storage)

	b := budgetOf(t, db, "cat1", "2020-09")
	require.NoError(t, editor.SetBudgeted(ctx, b.ID, 12345))
	assert.Equal(t, model.Amount(12345), budgetOf(t, db, "cat1", "2020-09").Budgeted)

	t.Run("same amount writes nothing", func(t *testing.T) {
		events, cancel := db.Storage.Subscribe()
		defer cancel()
		require.NoError(t, editor.SetBudgeted(ctx, b.ID, 12345))
		assert.Empty(t, events)
	})

	t.Run("zero", func(t *testing.T) {
		require.NoError(t, editor.ZeroBudget(ctx, b.ID))
		assert.Zero(t, budgetOf(t, db, "cat1", "2020-09").Budgeted)
	})

	t.Run("unknown budget", func(t *testing.T) {
		err := editor.SetBudgeted(ctx, 9999, 1)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestEditor_BudgetFromLastMonth(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))
	editor := NewEditor(db.Storage)
	completer := NewCompleter(db.Storage)

	_, err := completer.CompleteMonth(ctx, testutil.Month(t, "2020-10"))
	require.NoError(t, err)
	navigable := model.MonthRange(testutil.Month(t, "2020-01"), testutil.Month(t, "2020-12"))

	t.Run("copies previous amount", func(t *testing.T) {
		october := budgetOf(t, db, "cat2", "2020-10")
		copied, err := editor.BudgetFromLastMonth(ctx, october.ID, navigable)
		require.NoError(t, err)
		assert.True(t, copied)
		assert.Equal(t, model.Amount(500), budgetOf(t, db, "cat2", "2020-10").Budgeted)
	})

	t.Run("missing previous row counts as zero", func(t *testing.T) {
		october := budgetOf(t, db, "cat3", "2020-10")
		require.Equal(t, model.Amount(500), october.Budgeted)

		copied, err := editor.BudgetFromLastMonth(ctx, october.ID, navigable)
		require.NoError(t, err)
		assert.True(t, copied)
		assert.Zero(t, budgetOf(t, db, "cat3", "2020-10").Budgeted)
	})

	t.Run("previous month not navigable", func(t *testing.T) {
		october := budgetOf(t, db, "cat4", "2020-10")
		copied, err := editor.BudgetFromLastMonth(ctx, october.ID, model.MonthRange(
			testutil.Month(t, "2020-10"), testutil.Month(t, "2020-12")))
		require.NoError(t, err)
		assert.False(t, copied)
		assert.Equal(t, model.Amount(-1000), budgetOf(t, db, "cat4", "2020-10").Budgeted)
	})
}

func TestEditor_ClearMonth(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))
	editor := NewEditor(db.Storage)
	september := testutil.Month(t, "2020-09")

	cleared, err := editor.ClearMonth(ctx, september)
	require.NoError(t, err)
	assert.Equal(t, 3, cleared)

	budgets, err := db.Storage.BudgetsByMonth(ctx, september)
	require.NoError(t, err)
	for _, b := range budgets {
		assert.Zero(t, b.Budgeted)
	}

	october, err := db.Storage.BudgetsByMonth(ctx, testutil.Month(t, "2020-10"))
	require.NoError(t, err)
	assert.NotEmpty(t, october)
	for _, b := range october {
		assert.NotZero(t, b.Budgeted, "other months are untouched")
	}

	cleared, err = editor.ClearMonth(ctx, september)
	require.NoError(t, err)
	assert.Zero(t, cleared)
}
