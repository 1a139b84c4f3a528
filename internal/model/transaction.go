package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransaction is wrapped by every transaction validation failure.
var ErrInvalidTransaction = errors.New("invalid transaction")

// ValidationError names the field that made a transaction invalid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidTransaction, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTransaction
}

// Transaction is a single inflow or outflow of money.
type Transaction struct {
	Date        time.Time
	Description string
	// PayeeName is resolved to PayeeID by the store, creating the payee when new.
	PayeeName  string
	ID         int64
	PayeeID    int64
	CategoryID int64
	Amount     Amount
}

// IsUnassigned reports whether t is not yet assigned to a spending category.
func (t Transaction) IsUnassigned() bool {
	return t.CategoryID == UnassignedCategoryID
}

// Validate checks the fields a user must provide: payee, category and date.
func (t Transaction) Validate() error {
	if t.PayeeID == 0 && strings.TrimSpace(t.PayeeName) == "" {
		return &ValidationError{Field: "payee", Reason: "is required"}
	}
	if t.CategoryID == 0 {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	return nil
}

// NormalizeDate strips time of day and zone from d, keeping its calendar date.
func NormalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
