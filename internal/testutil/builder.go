package testutil

import (
	"testing"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Unassigned names the unassigned pseudo-category in builder calls.
const Unassigned = ""

// DefaultPayee is the payee of transactions built without one.
const DefaultPayee = "Test Payee"

// Builder assembles a Ledger fixture. Ids are assigned in insertion order
// starting at 1, matching what a fresh SQLite store would assign.
type Builder struct {
	t          testing.TB
	categoryOf map[string]int64
	groupOf    map[string]int64
	ledger     Ledger
}

// NewBuilder creates an empty Builder.
func NewBuilder(t testing.TB) *Builder {
	t.Helper()
	return &Builder{
		t:          t,
		categoryOf: make(map[string]int64),
		groupOf:    make(map[string]int64),
	}
}

// WithGroup adds a group at the next position.
func (b *Builder) WithGroup(name string) *Builder {
	b.t.Helper()
	if _, dup := b.groupOf[name]; dup {
		b.t.Fatalf("group %q added twice", name)
	}
	id := int64(len(b.ledger.Groups) + 1)
	b.ledger.Groups = append(b.ledger.Groups, model.Group{ID: id, Name: name, Position: len(b.ledger.Groups)})
	b.groupOf[name] = id
	return b
}

// WithCategories adds categories to group, which is created if needed.
func (b *Builder) WithCategories(group string, names ...string) *Builder {
	b.t.Helper()
	if _, ok := b.groupOf[group]; !ok {
		b.WithGroup(group)
	}
	groupID := b.groupOf[group]

	for _, name := range names {
		if _, dup := b.categoryOf[name]; dup {
			b.t.Fatalf("category %q added twice", name)
		}
		position := 0
		for _, c := range b.ledger.Categories {
			if c.GroupID == groupID {
				position++
			}
		}
		id := int64(len(b.ledger.Categories) + 1)
		b.ledger.Categories = append(b.ledger.Categories, model.Category{
			ID: id, Name: name, GroupID: groupID, PositionInGroup: position,
		})
		b.categoryOf[name] = id
	}
	return b
}

// WithBudget adds a budget of amount minor units for category in month (YYYY-MM).
func (b *Builder) WithBudget(category, month string, amount model.Amount) *Builder {
	b.t.Helper()
	b.ledger.Budgets = append(b.ledger.Budgets, model.Budget{
		ID:         int64(len(b.ledger.Budgets) + 1),
		CategoryID: b.category(category),
		Month:      Month(b.t, month),
		Budgeted:   amount,
	})
	return b
}

// WithTransaction adds a transaction of amount minor units on date (YYYY-MM-DD).
// Use Unassigned as category for money not yet budgeted.
func (b *Builder) WithTransaction(category string, amount model.Amount, date string) *Builder {
	b.t.Helper()
	b.ledger.Transactions = append(b.ledger.Transactions, model.Transaction{
		ID:         int64(len(b.ledger.Transactions) + 1),
		Amount:     amount,
		PayeeID:    1,
		PayeeName:  DefaultPayee,
		CategoryID: b.category(category),
		Date:       Date(b.t, date),
	})
	return b
}

// Build returns the fixture.
func (b *Builder) Build() Ledger {
	return b.ledger
}

func (b *Builder) category(name string) int64 {
	b.t.Helper()
	if name == Unassigned {
		return model.UnassignedCategoryID
	}
	id, ok := b.categoryOf[name]
	if !ok {
		b.t.Fatalf("unknown category %q", name)
	}
	return id
}
