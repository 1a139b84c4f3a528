package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/testutil"
)

func TestLoader_Load(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))

	snap, err := NewLoader(db.Storage).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Groups, 2)
	assert.Len(t, snap.Categories, 6)
	assert.Len(t, snap.Budgets, 9)
	assert.Len(t, snap.Transactions, 23)
	assert.Len(t, snap.BudgetsWithCategory, 9)
	assert.Len(t, snap.TransactionsOfCategory, 6)
	assert.Len(t, snap.BudgetsOfCategory, 6)
}

func TestLoader_CanceledContext(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(db.Storage).Load(ctx)
	assert.Error(t, err)
}

func TestReportOrphans(t *testing.T) {
	ledger := testutil.BudgetScreenFixture(t).Build()
	assert.Zero(t, ReportOrphans(ledger.Categories, ledger.Budgets, ledger.Transactions))

	categories := []model.Category{{ID: 1, Name: "Rent", GroupID: 1}}
	september := testutil.Month(t, "2020-09")
	budgets := []model.Budget{
		{ID: 1, CategoryID: 1, Month: september, Budgeted: 100},
		{ID: 2, CategoryID: 77, Month: september, Budgeted: 500},
	}
	transactions := []model.Transaction{
		{ID: 1, CategoryID: 1, Amount: -10, Date: testutil.Date(t, "2020-09-01")},
		{ID: 2, CategoryID: 77, Amount: -99, Date: testutil.Date(t, "2020-09-01")},
		{ID: 3, CategoryID: model.UnassignedCategoryID, Amount: 500, Date: testutil.Date(t, "2020-09-01")},
	}

	assert.Equal(t, 2, ReportOrphans(categories, budgets, transactions))
}

func TestCompute(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.BudgetScreenFixture(t))
	september := testutil.Month(t, "2020-09")

	snap, err := NewLoader(db.Storage).Load(context.Background())
	require.NoError(t, err)

	first, ok := Compute(september, snap)
	require.True(t, ok)
	second, ok := Compute(september, snap)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, model.Amount(10599), first.ToBeBudgeted)
	assert.Equal(t, september, first.Month)
	assert.Zero(t, first.Version)

	t.Run("withheld while joins lag", func(t *testing.T) {
		lagging := snap
		lagging.BudgetsOfCategory = snap.BudgetsOfCategory[:len(snap.BudgetsOfCategory)-1]
		_, ok := Compute(september, lagging)
		assert.False(t, ok)
	})
}
