package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

const categoryColumns = `id, name, group_id, position`

// AllCategories returns every stored category ordered by group and position.
func (s *SQLiteStorage) AllCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.allCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) allCategoriesTx(ctx context.Context, q queryable) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY group_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by id.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	if id == model.UnassignedCategoryID {
		c := model.Unassigned
		return &c, nil
	}

	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddCategories inserts categories and returns their new ids in order.
func (s *SQLiteStorage) AddCategories(ctx context.Context, categories ...model.Category) ([]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategories(categories, false); err != nil {
		return nil, err
	}

	var ids []int64
	err := s.write(ctx, func(tx *sql.Tx) error {
		var err error
		ids, err = s.addCategoriesTx(ctx, tx, categories)
		return err
	}, service.TableCategories)
	return ids, err
}

func (s *SQLiteStorage) addCategoriesTx(ctx context.Context, q queryable, categories []model.Category) ([]int64, error) {
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		result, err := q.ExecContext(ctx,
			`INSERT INTO categories (name, group_id, position) VALUES (?, ?, ?)`,
			c.Name, c.GroupID, c.PositionInGroup)
		if err != nil {
			return nil, wrapConstraint(err, "failed to insert category "+c.Name)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get category id: %w", err)
		}
		ids = append(ids, id)
		slog.Info("Created category", "id", id, "name", c.Name, "group_id", c.GroupID)
	}
	return ids, nil
}

// UpdateCategories updates name, group and position of existing categories.
func (s *SQLiteStorage) UpdateCategories(ctx context.Context, categories ...model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategories(categories, true); err != nil {
		return err
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		return s.updateCategoriesTx(ctx, tx, categories)
	}, service.TableCategories)
}

func (s *SQLiteStorage) updateCategoriesTx(ctx context.Context, q queryable, categories []model.Category) error {
	for _, c := range categories {
		result, err := q.ExecContext(ctx,
			`UPDATE categories SET name = ?, group_id = ?, position = ? WHERE id = ?`,
			c.Name, c.GroupID, c.PositionInGroup, c.ID)
		if err != nil {
			return wrapConstraint(err, fmt.Sprintf("failed to update category %d", c.ID))
		}
		if err := expectAffected(result, "category", c.ID); err != nil {
			return err
		}
	}
	slog.Debug("Updated categories", "count", len(categories))
	return nil
}

// DeleteCategories deletes categories by id. Their budgets go with them.
// Callers reassign the categories' transactions first.
func (s *SQLiteStorage) DeleteCategories(ctx context.Context, ids ...int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIDs(ids, "ids"); err != nil {
		return err
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		return s.deleteCategoriesTx(ctx, tx, ids)
	}, service.TableCategories, service.TableBudgets)
}

func (s *SQLiteStorage) deleteCategoriesTx(ctx context.Context, q queryable, ids []int64) error {
	for _, id := range ids {
		result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		if err := expectAffected(result, "category", id); err != nil {
			return err
		}
	}
	slog.Info("Deleted categories", "ids", ids)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.GroupID, &c.PositionInGroup); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("failed to scan category: %w", err)
	}
	return c, nil
}

func expectAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, common.ErrNotFound)
	}
	return nil
}

// wrapConstraint maps SQLite unique constraint failures to common.ErrDuplicateEntry.
func wrapConstraint(err error, msg string) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", msg, common.ErrDuplicateEntry)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
