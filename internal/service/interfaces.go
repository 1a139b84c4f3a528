// Package service defines the contracts between the budget engine and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Table names carried by change events.
const (
	TableGroups       = "groups"
	TableCategories   = "categories"
	TableBudgets      = "budgets"
	TableTransactions = "transactions"
	TablePayees       = "payees"
	TableSettings     = "settings"
)

// ChangeEvent announces a committed write to the ledger.
// Version increases with every write, so a subscriber can tell a stale event from a fresh one.
type ChangeEvent struct {
	Tables  []string
	Version uint64
}

// LedgerReader exposes the read side of the ledger.
type LedgerReader interface {
	AllCategories(ctx context.Context) ([]model.Category, error)
	AllGroups(ctx context.Context) ([]model.Group, error)
	AllBudgets(ctx context.Context) ([]model.Budget, error)
	AllTransactions(ctx context.Context) ([]model.Transaction, error)
	AllPayees(ctx context.Context) ([]model.Payee, error)

	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	GetBudget(ctx context.Context, id int64) (*model.Budget, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)

	BudgetsByMonth(ctx context.Context, month model.Month) ([]model.Budget, error)
	BudgetOf(ctx context.Context, categoryID int64, month model.Month) (*model.Budget, error)
	MonthsWithBudgets(ctx context.Context) ([]model.Month, error)
	TransactionsUntil(ctx context.Context, date time.Time) ([]model.Transaction, error)
	TransactionsOfCategories(ctx context.Context, categoryIDs ...int64) ([]model.Transaction, error)

	BudgetsJoinedWithCategory(ctx context.Context) ([]model.BudgetWithCategory, error)
	TransactionsOfEachCategory(ctx context.Context) ([]model.TransactionsOfCategory, error)
	BudgetsOfEachCategory(ctx context.Context) ([]model.BudgetsOfCategory, error)
}

// LedgerWriter exposes the write side of the ledger. Every call is atomic as a batch.
type LedgerWriter interface {
	AddGroups(ctx context.Context, groups ...model.Group) ([]int64, error)
	AddCategories(ctx context.Context, categories ...model.Category) ([]int64, error)
	UpdateCategories(ctx context.Context, categories ...model.Category) error
	DeleteCategories(ctx context.Context, ids ...int64) error

	// AddBudgets inserts budgets, ignoring any whose (category, month) already exists.
	// It returns the number of rows actually inserted.
	AddBudgets(ctx context.Context, budgets ...model.Budget) (int, error)
	UpdateBudgets(ctx context.Context, budgets ...model.Budget) error

	// AddTransactions inserts transactions and returns the ids of payees it had to create.
	AddTransactions(ctx context.Context, transactions ...model.Transaction) ([]int64, error)
	UpdateTransactions(ctx context.Context, transactions ...model.Transaction) error
	DeleteTransactions(ctx context.Context, ids ...int64) error
}

// Ledger is the full read/write contract of the ledger.
type Ledger interface {
	LedgerReader
	LedgerWriter
}

// LedgerStore is a durable Ledger with change notification.
type LedgerStore interface {
	Ledger

	// Subscribe returns a channel of change events and a function that cancels the subscription.
	// Events may be coalesced; the latest one always arrives.
	Subscribe() (<-chan ChangeEvent, func())

	// RunInTx runs fn against a ledger bound to one database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx Ledger) error) error

	Migrate(ctx context.Context) error
	Close() error
}

// SettingsStore persists small user preferences such as the selected month.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
