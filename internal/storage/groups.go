package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

// AddGroups inserts groups and returns their new ids in order.
func (s *SQLiteStorage) AddGroups(ctx context.Context, groups ...model.Group) ([]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	var ids []int64
	err := s.write(ctx, func(tx *sql.Tx) error {
		var err error
		ids, err = s.addGroupsTx(ctx, tx, groups)
		return err
	}, service.TableGroups)
	return ids, err
}

func (s *SQLiteStorage) addGroupsTx(ctx context.Context, q queryable, groups []model.Group) ([]int64, error) {
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		result, err := q.ExecContext(ctx,
			`INSERT INTO category_groups (name, position) VALUES (?, ?)`,
			g.Name, g.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to insert group %q: %w", g.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get group id: %w", err)
		}
		ids = append(ids, id)
		slog.Info("Created group", "id", id, "name", g.Name)
	}
	return ids, nil
}

// AllGroups returns every group ordered by position.
func (s *SQLiteStorage) AllGroups(ctx context.Context) ([]model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.allGroupsTx(ctx, s.db)
}

func (s *SQLiteStorage) allGroupsTx(ctx context.Context, q queryable) ([]model.Group, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, position FROM category_groups ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Position); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}
