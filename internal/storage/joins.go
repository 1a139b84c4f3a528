package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/zerobudget/internal/model"
)

// BudgetsJoinedWithCategory returns every budget row paired with its category.
func (s *SQLiteStorage) BudgetsJoinedWithCategory(ctx context.Context) ([]model.BudgetWithCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.budgetsJoinedWithCategoryTx(ctx, s.db)
}

func (s *SQLiteStorage) budgetsJoinedWithCategoryTx(ctx context.Context, q queryable) ([]model.BudgetWithCategory, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT b.id, b.category_id, b.month, b.budgeted,
		       c.id, c.name, c.group_id, c.position
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		ORDER BY b.month, c.group_id, c.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets with categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var joined []model.BudgetWithCategory
	for rows.Next() {
		var (
			row      model.BudgetWithCategory
			month    string
			budgeted int64
		)
		if err := rows.Scan(&row.Budget.ID, &row.Budget.CategoryID, &month, &budgeted,
			&row.Category.ID, &row.Category.Name, &row.Category.GroupID, &row.Category.PositionInGroup); err != nil {
			return nil, fmt.Errorf("failed to scan budget with category: %w", err)
		}
		m, err := model.ParseMonth(month)
		if err != nil {
			return nil, fmt.Errorf("budget %d: %w", row.Budget.ID, err)
		}
		row.Budget.Month = m
		row.Budget.Budgeted = model.Amount(budgeted)
		joined = append(joined, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets with categories: %w", err)
	}
	return joined, nil
}

// TransactionsOfEachCategory returns every real category with its transactions.
// Categories without transactions are included with an empty list.
func (s *SQLiteStorage) TransactionsOfEachCategory(ctx context.Context) ([]model.TransactionsOfCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var result []model.TransactionsOfCategory
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.transactionsOfEachCategoryTx(ctx, tx)
		return err
	})
	return result, err
}

func (s *SQLiteStorage) transactionsOfEachCategoryTx(ctx context.Context, q queryable) ([]model.TransactionsOfCategory, error) {
	categories, err := s.allCategoriesTx(ctx, q)
	if err != nil {
		return nil, err
	}
	transactions, err := s.queryTransactions(ctx, q,
		`SELECT `+transactionColumns+` FROM transactions WHERE category_id <> ? ORDER BY date, id`,
		model.UnassignedCategoryID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]model.Transaction, len(categories))
	for _, txn := range transactions {
		byCategory[txn.CategoryID] = append(byCategory[txn.CategoryID], txn)
	}

	result := make([]model.TransactionsOfCategory, 0, len(categories))
	for _, c := range categories {
		result = append(result, model.TransactionsOfCategory{Category: c, Transactions: byCategory[c.ID]})
	}
	return result, nil
}

// BudgetsOfEachCategory returns every real category with its budget rows.
// Categories without budgets are included with an empty list.
func (s *SQLiteStorage) BudgetsOfEachCategory(ctx context.Context) ([]model.BudgetsOfCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var result []model.BudgetsOfCategory
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.budgetsOfEachCategoryTx(ctx, tx)
		return err
	})
	return result, err
}

func (s *SQLiteStorage) budgetsOfEachCategoryTx(ctx context.Context, q queryable) ([]model.BudgetsOfCategory, error) {
	categories, err := s.allCategoriesTx(ctx, q)
	if err != nil {
		return nil, err
	}
	budgets, err := s.queryBudgets(ctx, q, `SELECT `+budgetColumns+` FROM budgets ORDER BY month`)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]model.Budget, len(categories))
	for _, b := range budgets {
		byCategory[b.CategoryID] = append(byCategory[b.CategoryID], b)
	}

	result := make([]model.BudgetsOfCategory, 0, len(categories))
	for _, c := range categories {
		result = append(result, model.BudgetsOfCategory{Category: c, Budgets: byCategory[c.ID]})
	}
	return result, nil
}

// readTx runs fn in a read-only transaction so that multi-query reads see one snapshot.
func (s *SQLiteStorage) readTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
