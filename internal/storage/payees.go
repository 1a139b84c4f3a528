package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/zerobudget/internal/model"
)

// AllPayees returns every payee ordered by name.
func (s *SQLiteStorage) AllPayees(ctx context.Context) ([]model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.allPayeesTx(ctx, s.db)
}

func (s *SQLiteStorage) allPayeesTx(ctx context.Context, q queryable) ([]model.Payee, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM payees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payees []model.Payee
	for rows.Next() {
		var p model.Payee
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		payees = append(payees, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payees: %w", err)
	}
	return payees, nil
}

// resolvePayeeTx returns the id of the payee called name, creating it when absent.
// created reports whether a new payee row was inserted.
func (s *SQLiteStorage) resolvePayeeTx(ctx context.Context, q queryable, name string) (id int64, created bool, err error) {
	name = strings.TrimSpace(name)

	err = q.QueryRowContext(ctx, `SELECT id FROM payees WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up payee %q: %w", name, err)
	}

	result, err := q.ExecContext(ctx, `INSERT INTO payees (name) VALUES (?)`, name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create payee %q: %w", name, err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get payee id: %w", err)
	}
	slog.Info("Created payee", "id", id, "name", name)
	return id, true, nil
}
