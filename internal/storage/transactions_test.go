package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

func TestAddTransactions_CreatesPayees(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, ids := seedCategories(t, store, "Groceries")

	created, err := store.AddTransactions(ctx,
		model.Transaction{Amount: 250000, PayeeName: "Employer", CategoryID: model.UnassignedCategoryID, Date: date(2020, time.September, 1)},
		model.Transaction{Amount: -4599, PayeeName: "Market", CategoryID: ids[0], Date: date(2020, time.September, 3)},
		model.Transaction{Amount: -1250, PayeeName: "Market", CategoryID: ids[0], Date: date(2020, time.September, 9)},
	)
	require.NoError(t, err)
	assert.Len(t, created, 2, "one row per new payee name")

	payees, err := store.AllPayees(ctx)
	require.NoError(t, err)
	require.Len(t, payees, 2)
	assert.Equal(t, "Employer", payees[0].Name)

	created, err = store.AddTransactions(ctx,
		model.Transaction{Amount: -100, PayeeName: "Market", CategoryID: ids[0], Date: date(2020, time.October, 1)},
	)
	require.NoError(t, err)
	assert.Empty(t, created)

	all, err := store.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, model.Amount(250000), all[0].Amount)
	assert.Equal(t, date(2020, time.September, 1), all[0].Date)
}

func TestAddTransactions_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		txn     model.Transaction
	}{
		{
			name:    "missing payee",
			txn:     model.Transaction{CategoryID: model.UnassignedCategoryID, Date: date(2020, time.May, 1)},
			wantErr: model.ErrInvalidTransaction,
		},
		{
			name:    "missing category",
			txn:     model.Transaction{PayeeName: "Shop", Date: date(2020, time.May, 1)},
			wantErr: model.ErrInvalidTransaction,
		},
		{
			name:    "missing date",
			txn:     model.Transaction{PayeeName: "Shop", CategoryID: model.UnassignedCategoryID},
			wantErr: model.ErrInvalidTransaction,
		},
		{
			name:    "unknown category",
			txn:     model.Transaction{PayeeName: "Shop", CategoryID: 42, Date: date(2020, time.May, 1)},
			wantErr: common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddTransactions(ctx, tt.txn)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	all, err := store.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "failed batches leave nothing behind")
}

func TestAddTransactions_BatchIsAtomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.AddTransactions(ctx,
		model.Transaction{Amount: 1, PayeeName: "A", CategoryID: model.UnassignedCategoryID, Date: date(2020, time.May, 1)},
		model.Transaction{Amount: 2, PayeeName: "B", CategoryID: 77, Date: date(2020, time.May, 1)},
	)
	require.Error(t, err)

	all, err := store.AllTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	payees, err := store.AllPayees(ctx)
	require.NoError(t, err)
	assert.Empty(t, payees)
}

func TestUpdateAndDeleteTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, ids := seedCategories(t, store, "Fun")
	_, err := store.AddTransactions(ctx,
		model.Transaction{Amount: -500, PayeeName: "Cinema", CategoryID: ids[0], Date: date(2020, time.September, 12)},
	)
	require.NoError(t, err)

	all, err := store.AllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	txn := all[0]
	txn.CategoryID = model.UnassignedCategoryID
	txn.Description = "refund pending"
	require.NoError(t, store.UpdateTransactions(ctx, txn))

	got, err := store.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.IsUnassigned())
	assert.Equal(t, "refund pending", got.Description)

	require.NoError(t, store.DeleteTransactions(ctx, txn.ID))
	_, err = store.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, store.DeleteTransactions(ctx, txn.ID), common.ErrNotFound)
}

func TestTransactionQueries(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, ids := seedCategories(t, store, "Rent", "Fun")
	_, err := store.AddTransactions(ctx,
		model.Transaction{Amount: -100, PayeeName: "P", CategoryID: ids[0], Date: date(2020, time.September, 30)},
		model.Transaction{Amount: -200, PayeeName: "P", CategoryID: ids[1], Date: date(2020, time.October, 1)},
		model.Transaction{Amount: 900, PayeeName: "P", CategoryID: model.UnassignedCategoryID, Date: date(2020, time.August, 21)},
	)
	require.NoError(t, err)

	until, err := store.TransactionsUntil(ctx, model.NewMonth(2020, time.September).LastDay())
	require.NoError(t, err)
	assert.Len(t, until, 2)

	ofFun, err := store.TransactionsOfCategories(ctx, ids[1])
	require.NoError(t, err)
	require.Len(t, ofFun, 1)
	assert.Equal(t, model.Amount(-200), ofFun[0].Amount)

	none, err := store.TransactionsOfCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}
