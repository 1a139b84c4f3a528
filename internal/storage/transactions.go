package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

// dateLayout is how transaction dates are stored; it sorts chronologically as text.
const dateLayout = "2006-01-02"

const transactionColumns = `id, amount, payee_id, category_id, description, date`

// AllTransactions returns every transaction ordered by date.
func (s *SQLiteStorage) AllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.allTransactionsTx(ctx, s.db)
}

func (s *SQLiteStorage) allTransactionsTx(ctx context.Context, q queryable) ([]model.Transaction, error) {
	return s.queryTransactions(ctx, q, `SELECT `+transactionColumns+` FROM transactions ORDER BY date, id`)
}

// GetTransaction retrieves a transaction by id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.getTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionTx(ctx context.Context, q queryable, id int64) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// TransactionsUntil returns every transaction dated on or before date.
func (s *SQLiteStorage) TransactionsUntil(ctx context.Context, date time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.transactionsUntilTx(ctx, s.db, date)
}

func (s *SQLiteStorage) transactionsUntilTx(ctx context.Context, q queryable, date time.Time) ([]model.Transaction, error) {
	return s.queryTransactions(ctx, q,
		`SELECT `+transactionColumns+` FROM transactions WHERE date <= ? ORDER BY date, id`,
		date.Format(dateLayout))
}

// TransactionsOfCategories returns every transaction assigned to one of categoryIDs.
func (s *SQLiteStorage) TransactionsOfCategories(ctx context.Context, categoryIDs ...int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.transactionsOfCategoriesTx(ctx, s.db, categoryIDs)
}

func (s *SQLiteStorage) transactionsOfCategoriesTx(ctx context.Context, q queryable, categoryIDs []int64) ([]model.Transaction, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categoryIDs)), ",")
	args := make([]any, len(categoryIDs))
	for i, id := range categoryIDs {
		args[i] = id
	}

	// #nosec G202 - only placeholders are concatenated
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE category_id IN (` + placeholders + `) ORDER BY date, id`
	return s.queryTransactions(ctx, q, query, args...)
}

// AddTransactions inserts transactions in one batch. Transactions that carry a
// PayeeName instead of a PayeeID get the payee resolved, or created when new.
// It returns the ids of payees that were created.
func (s *SQLiteStorage) AddTransactions(ctx context.Context, transactions ...model.Transaction) ([]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactions(transactions, false); err != nil {
		return nil, err
	}

	var created []int64
	err := s.write(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.addTransactionsTx(ctx, tx, transactions)
		return err
	}, service.TableTransactions, service.TablePayees)
	return created, err
}

func (s *SQLiteStorage) addTransactionsTx(ctx context.Context, q queryable, transactions []model.Transaction) ([]int64, error) {
	var createdPayees []int64

	stmt := `INSERT INTO transactions (amount, payee_id, category_id, description, date) VALUES (?, ?, ?, ?, ?)`
	for i, txn := range transactions {
		payeeID, created, err := s.payeeOf(ctx, q, txn)
		if err != nil {
			return nil, fmt.Errorf("transaction at index %d: %w", i, err)
		}
		if created {
			createdPayees = append(createdPayees, payeeID)
		}
		if err := s.ensureCategoryTx(ctx, q, txn.CategoryID); err != nil {
			return nil, fmt.Errorf("transaction at index %d: %w", i, err)
		}

		if _, err := q.ExecContext(ctx, stmt,
			int64(txn.Amount), payeeID, txn.CategoryID, txn.Description,
			model.NormalizeDate(txn.Date).Format(dateLayout)); err != nil {
			return nil, fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	slog.Debug("Added transactions", "count", len(transactions), "new_payees", len(createdPayees))
	return createdPayees, nil
}

// UpdateTransactions replaces the stored fields of existing transactions.
func (s *SQLiteStorage) UpdateTransactions(ctx context.Context, transactions ...model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions, true); err != nil {
		return err
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		_, err := s.updateTransactionsTx(ctx, tx, transactions)
		return err
	}, service.TableTransactions, service.TablePayees)
}

func (s *SQLiteStorage) updateTransactionsTx(ctx context.Context, q queryable, transactions []model.Transaction) ([]int64, error) {
	var createdPayees []int64

	stmt := `UPDATE transactions SET amount = ?, payee_id = ?, category_id = ?, description = ?, date = ? WHERE id = ?`
	for _, txn := range transactions {
		payeeID, created, err := s.payeeOf(ctx, q, txn)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", txn.ID, err)
		}
		if created {
			createdPayees = append(createdPayees, payeeID)
		}
		if err := s.ensureCategoryTx(ctx, q, txn.CategoryID); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", txn.ID, err)
		}

		result, err := q.ExecContext(ctx, stmt,
			int64(txn.Amount), payeeID, txn.CategoryID, txn.Description,
			model.NormalizeDate(txn.Date).Format(dateLayout), txn.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update transaction %d: %w", txn.ID, err)
		}
		if err := expectAffected(result, "transaction", txn.ID); err != nil {
			return nil, err
		}
	}

	slog.Debug("Updated transactions", "count", len(transactions))
	return createdPayees, nil
}

// DeleteTransactions deletes transactions by id.
func (s *SQLiteStorage) DeleteTransactions(ctx context.Context, ids ...int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIDs(ids, "ids"); err != nil {
		return err
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		return s.deleteTransactionsTx(ctx, tx, ids)
	}, service.TableTransactions)
}

func (s *SQLiteStorage) deleteTransactionsTx(ctx context.Context, q queryable, ids []int64) error {
	for _, id := range ids {
		result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete transaction %d: %w", id, err)
		}
		if err := expectAffected(result, "transaction", id); err != nil {
			return err
		}
	}
	slog.Debug("Deleted transactions", "count", len(ids))
	return nil
}

func (s *SQLiteStorage) payeeOf(ctx context.Context, q queryable, txn model.Transaction) (int64, bool, error) {
	if txn.PayeeID != 0 {
		return txn.PayeeID, false, nil
	}
	return s.resolvePayeeTx(ctx, q, txn.PayeeName)
}

// ensureCategoryTx rejects transactions pointing at a category that does not exist.
func (s *SQLiteStorage) ensureCategoryTx(ctx context.Context, q queryable, categoryID int64) error {
	if categoryID == model.UnassignedCategoryID {
		return nil
	}
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, categoryID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check category %d: %w", categoryID, err)
	}
	if !exists {
		return fmt.Errorf("category %d: %w", categoryID, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		txn    model.Transaction
		amount int64
		date   string
	)
	if err := row.Scan(&txn.ID, &amount, &txn.PayeeID, &txn.CategoryID, &txn.Description, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return txn, err
		}
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return txn, fmt.Errorf("%w: transaction %d: %w", common.ErrDatabaseCorrupted, txn.ID, err)
	}
	txn.Date = d
	txn.Amount = model.Amount(amount)
	return txn, nil
}
