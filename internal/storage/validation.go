package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidGroup       = errors.New("invalid group")
	ErrInvalidTransaction = model.ErrInvalidTransaction
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateNotEmpty[T any](items []T, paramName string) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySlice, paramName)
	}
	return nil
}

func validateIDs(ids []int64, paramName string) error {
	if err := validateNotEmpty(ids, paramName); err != nil {
		return err
	}
	for i, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: %s[%d] = %d", ErrInvalidID, paramName, i, id)
		}
	}
	return nil
}

func validateGroups(groups []model.Group) error {
	if err := validateNotEmpty(groups, "groups"); err != nil {
		return err
	}
	for i, g := range groups {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("group at index %d: %w: missing name", i, ErrInvalidGroup)
		}
	}
	return nil
}

func validateCategories(categories []model.Category, requireID bool) error {
	if err := validateNotEmpty(categories, "categories"); err != nil {
		return err
	}
	for i, c := range categories {
		switch {
		case strings.TrimSpace(c.Name) == "":
			return fmt.Errorf("category at index %d: %w: missing name", i, ErrInvalidCategory)
		case c.IsUnassigned():
			return fmt.Errorf("category at index %d: %w: the unassigned category is not stored", i, ErrInvalidCategory)
		case requireID && c.ID <= 0:
			return fmt.Errorf("category at index %d: %w: missing id", i, ErrInvalidCategory)
		case c.GroupID <= 0:
			return fmt.Errorf("category at index %d: %w: missing group", i, ErrInvalidCategory)
		}
	}
	return nil
}

func validateBudgets(budgets []model.Budget, requireID bool) error {
	if err := validateNotEmpty(budgets, "budgets"); err != nil {
		return err
	}
	for i, b := range budgets {
		switch {
		case b.CategoryID <= 0:
			return fmt.Errorf("budget at index %d: %w: missing category", i, ErrInvalidBudget)
		case b.Month.IsZero():
			return fmt.Errorf("budget at index %d: %w: missing month", i, ErrInvalidBudget)
		case requireID && b.ID <= 0:
			return fmt.Errorf("budget at index %d: %w: missing id", i, ErrInvalidBudget)
		}
	}
	return nil
}

func validateTransactions(transactions []model.Transaction, requireID bool) error {
	if err := validateNotEmpty(transactions, "transactions"); err != nil {
		return err
	}
	for i, txn := range transactions {
		if err := txn.Validate(); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
		if requireID && txn.ID <= 0 {
			return fmt.Errorf("transaction at index %d: %w: missing id", i, ErrInvalidTransaction)
		}
	}
	return nil
}
