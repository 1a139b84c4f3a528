package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

const budgetColumns = `id, category_id, month, budgeted`

// AllBudgets returns every budget row.
func (s *SQLiteStorage) AllBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.allBudgetsTx(ctx, s.db)
}

func (s *SQLiteStorage) allBudgetsTx(ctx context.Context, q queryable) ([]model.Budget, error) {
	return s.queryBudgets(ctx, q, `SELECT `+budgetColumns+` FROM budgets ORDER BY month, category_id`)
}

// BudgetsByMonth returns the budget rows of one month.
func (s *SQLiteStorage) BudgetsByMonth(ctx context.Context, month model.Month) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.budgetsByMonthTx(ctx, s.db, month)
}

func (s *SQLiteStorage) budgetsByMonthTx(ctx context.Context, q queryable, month model.Month) ([]model.Budget, error) {
	return s.queryBudgets(ctx, q,
		`SELECT `+budgetColumns+` FROM budgets WHERE month = ? ORDER BY category_id`, month.String())
}

// GetBudget retrieves a budget by id.
func (s *SQLiteStorage) GetBudget(ctx context.Context, id int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBudgetByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getBudgetByIDTx(ctx context.Context, q queryable, id int64) (*model.Budget, error) {
	return s.getBudgetTx(ctx, q, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
}

// BudgetOf returns the budget of a category for a month.
func (s *SQLiteStorage) BudgetOf(ctx context.Context, categoryID int64, month model.Month) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.budgetOfTx(ctx, s.db, categoryID, month)
}

func (s *SQLiteStorage) budgetOfTx(ctx context.Context, q queryable, categoryID int64, month model.Month) (*model.Budget, error) {
	return s.getBudgetTx(ctx, q,
		`SELECT `+budgetColumns+` FROM budgets WHERE category_id = ? AND month = ?`, categoryID, month.String())
}

// MonthsWithBudgets returns every month that has at least one budget row, oldest first.
func (s *SQLiteStorage) MonthsWithBudgets(ctx context.Context) ([]model.Month, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.monthsWithBudgetsTx(ctx, s.db)
}

func (s *SQLiteStorage) monthsWithBudgetsTx(ctx context.Context, q queryable) ([]model.Month, error) {
	rows, err := q.QueryContext(ctx, `SELECT DISTINCT month FROM budgets ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget months: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var months []model.Month
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan month: %w", err)
		}
		m, err := model.ParseMonth(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDatabaseCorrupted, err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget months: %w", err)
	}
	return months, nil
}

// AddBudgets inserts budgets in one batch. Rows whose (category, month) already
// exists are skipped, which makes repeated completion of a month a no-op.
func (s *SQLiteStorage) AddBudgets(ctx context.Context, budgets ...model.Budget) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateBudgets(budgets, false); err != nil {
		return 0, err
	}

	var inserted int
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err = s.addBudgetsTx(ctx, tx, budgets)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// A batch made only of existing rows changed nothing, so nobody is woken.
	if inserted > 0 {
		s.notifier.publish(service.TableBudgets)
	}
	return inserted, nil
}

func (s *SQLiteStorage) addBudgetsTx(ctx context.Context, q queryable, budgets []model.Budget) (int, error) {
	inserted := 0
	for _, b := range budgets {
		result, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO budgets (category_id, month, budgeted) VALUES (?, ?, ?)`,
			b.CategoryID, b.Month.String(), int64(b.Budgeted))
		if err != nil {
			return 0, fmt.Errorf("failed to insert budget for category %d in %s: %w", b.CategoryID, b.Month, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get affected rows: %w", err)
		}
		inserted += int(n)
	}
	slog.Debug("Added budgets", "requested", len(budgets), "inserted", inserted)
	return inserted, nil
}

// UpdateBudgets updates the budgeted amount of existing budgets.
func (s *SQLiteStorage) UpdateBudgets(ctx context.Context, budgets ...model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudgets(budgets, true); err != nil {
		return err
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		return s.updateBudgetsTx(ctx, tx, budgets)
	}, service.TableBudgets)
}

func (s *SQLiteStorage) updateBudgetsTx(ctx context.Context, q queryable, budgets []model.Budget) error {
	for _, b := range budgets {
		result, err := q.ExecContext(ctx,
			`UPDATE budgets SET budgeted = ? WHERE id = ?`, int64(b.Budgeted), b.ID)
		if err != nil {
			return fmt.Errorf("failed to update budget %d: %w", b.ID, err)
		}
		if err := expectAffected(result, "budget", b.ID); err != nil {
			return err
		}
	}
	slog.Debug("Updated budgets", "count", len(budgets))
	return nil
}

func (s *SQLiteStorage) getBudgetTx(ctx context.Context, q queryable, query string, args ...any) (*model.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStorage) queryBudgets(ctx context.Context, q queryable, query string, args ...any) ([]model.Budget, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

func scanBudget(row scanner) (model.Budget, error) {
	var (
		b        model.Budget
		month    string
		budgeted int64
	)
	if err := row.Scan(&b.ID, &b.CategoryID, &month, &budgeted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("failed to scan budget: %w", err)
	}
	m, err := model.ParseMonth(month)
	if err != nil {
		return b, fmt.Errorf("%w: budget %d: %w", common.ErrDatabaseCorrupted, b.ID, err)
	}
	b.Month = m
	b.Budgeted = model.Amount(budgeted)
	return b, nil
}
