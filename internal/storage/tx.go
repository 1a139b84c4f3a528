package storage

import (
	"context"
	"sort"
	"time"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

// sqliteTransaction is a service.Ledger bound to one database transaction.
// It records which tables it wrote so RunInTx can publish a single change event.
type sqliteTransaction struct {
	tx      queryable
	storage *SQLiteStorage
	touched map[string]bool
}

var _ service.Ledger = (*sqliteTransaction)(nil)

func (t *sqliteTransaction) touch(tables ...string) {
	for _, table := range tables {
		t.touched[table] = true
	}
}

func (t *sqliteTransaction) touchedTables() []string {
	tables := make([]string, 0, len(t.touched))
	for table := range t.touched {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

func (t *sqliteTransaction) AllCategories(ctx context.Context) ([]model.Category, error) {
	return t.storage.allCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) AllGroups(ctx context.Context) ([]model.Group, error) {
	return t.storage.allGroupsTx(ctx, t.tx)
}

func (t *sqliteTransaction) AllBudgets(ctx context.Context) ([]model.Budget, error) {
	return t.storage.allBudgetsTx(ctx, t.tx)
}

func (t *sqliteTransaction) AllTransactions(ctx context.Context) ([]model.Transaction, error) {
	return t.storage.allTransactionsTx(ctx, t.tx)
}

func (t *sqliteTransaction) AllPayees(ctx context.Context) ([]model.Payee, error) {
	return t.storage.allPayeesTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return t.storage.getCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetBudget(ctx context.Context, id int64) (*model.Budget, error) {
	return t.storage.getBudgetByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	return t.storage.getTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) BudgetsByMonth(ctx context.Context, month model.Month) ([]model.Budget, error) {
	return t.storage.budgetsByMonthTx(ctx, t.tx, month)
}

func (t *sqliteTransaction) BudgetOf(ctx context.Context, categoryID int64, month model.Month) (*model.Budget, error) {
	return t.storage.budgetOfTx(ctx, t.tx, categoryID, month)
}

func (t *sqliteTransaction) MonthsWithBudgets(ctx context.Context) ([]model.Month, error) {
	return t.storage.monthsWithBudgetsTx(ctx, t.tx)
}

func (t *sqliteTransaction) TransactionsUntil(ctx context.Context, date time.Time) ([]model.Transaction, error) {
	return t.storage.transactionsUntilTx(ctx, t.tx, date)
}

func (t *sqliteTransaction) TransactionsOfCategories(ctx context.Context, categoryIDs ...int64) ([]model.Transaction, error) {
	return t.storage.transactionsOfCategoriesTx(ctx, t.tx, categoryIDs)
}

func (t *sqliteTransaction) BudgetsJoinedWithCategory(ctx context.Context) ([]model.BudgetWithCategory, error) {
	return t.storage.budgetsJoinedWithCategoryTx(ctx, t.tx)
}

func (t *sqliteTransaction) TransactionsOfEachCategory(ctx context.Context) ([]model.TransactionsOfCategory, error) {
	return t.storage.transactionsOfEachCategoryTx(ctx, t.tx)
}

func (t *sqliteTransaction) BudgetsOfEachCategory(ctx context.Context) ([]model.BudgetsOfCategory, error) {
	return t.storage.budgetsOfEachCategoryTx(ctx, t.tx)
}

func (t *sqliteTransaction) AddGroups(ctx context.Context, groups ...model.Group) ([]int64, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}
	t.touch(service.TableGroups)
	return t.storage.addGroupsTx(ctx, t.tx, groups)
}

func (t *sqliteTransaction) AddCategories(ctx context.Context, categories ...model.Category) ([]int64, error) {
	if err := validateCategories(categories, false); err != nil {
		return nil, err
	}
	t.touch(service.TableCategories)
	return t.storage.addCategoriesTx(ctx, t.tx, categories)
}

func (t *sqliteTransaction) UpdateCategories(ctx context.Context, categories ...model.Category) error {
	if err := validateCategories(categories, true); err != nil {
		return err
	}
	t.touch(service.TableCategories)
	return t.storage.updateCategoriesTx(ctx, t.tx, categories)
}

func (t *sqliteTransaction) DeleteCategories(ctx context.Context, ids ...int64) error {
	if err := validateIDs(ids, "ids"); err != nil {
		return err
	}
	t.touch(service.TableCategories, service.TableBudgets)
	return t.storage.deleteCategoriesTx(ctx, t.tx, ids)
}

func (t *sqliteTransaction) AddBudgets(ctx context.Context, budgets ...model.Budget) (int, error) {
	if err := validateBudgets(budgets, false); err != nil {
		return 0, err
	}
	inserted, err := t.storage.addBudgetsTx(ctx, t.tx, budgets)
	if inserted > 0 {
		t.touch(service.TableBudgets)
	}
	return inserted, err
}

func (t *sqliteTransaction) UpdateBudgets(ctx context.Context, budgets ...model.Budget) error {
	if err := validateBudgets(budgets, true); err != nil {
		return err
	}
	t.touch(service.TableBudgets)
	return t.storage.updateBudgetsTx(ctx, t.tx, budgets)
}

func (t *sqliteTransaction) AddTransactions(ctx context.Context, transactions ...model.Transaction) ([]int64, error) {
	if err := validateTransactions(transactions, false); err != nil {
		return nil, err
	}
	t.touch(service.TableTransactions, service.TablePayees)
	return t.storage.addTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) UpdateTransactions(ctx context.Context, transactions ...model.Transaction) error {
	if err := validateTransactions(transactions, true); err != nil {
		return err
	}
	t.touch(service.TableTransactions, service.TablePayees)
	_, err := t.storage.updateTransactionsTx(ctx, t.tx, transactions)
	return err
}

func (t *sqliteTransaction) DeleteTransactions(ctx context.Context, ids ...int64) error {
	if err := validateIDs(ids, "ids"); err != nil {
		return err
	}
	t.touch(service.TableTransactions)
	return t.storage.deleteTransactionsTx(ctx, t.tx, ids)
}
