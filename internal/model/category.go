package model

// UnassignedCategoryID is the id of the "to be budgeted" pseudo-category.
// It is never persisted as a category row.
const UnassignedCategoryID int64 = -1

// Unassigned is the pseudo-category for money not yet assigned to a spending category.
var Unassigned = Category{
	ID:              UnassignedCategoryID,
	Name:            "To be budgeted",
	PositionInGroup: -1,
}

// Category is a spending category a user budgets for.
type Category struct {
	Name            string
	ID              int64
	GroupID         int64
	PositionInGroup int
}

// IsUnassigned reports whether c is the "to be budgeted" pseudo-category.
func (c Category) IsUnassigned() bool {
	return c.ID == UnassignedCategoryID
}

// SameContent reports whether c and o agree on name, group and position.
func (c Category) SameContent(o Category) bool {
	return c.Name == o.Name && c.GroupID == o.GroupID && c.PositionInGroup == o.PositionInGroup
}

// Group is a named, ordered collection of categories.
type Group struct {
	Name     string
	ID       int64
	Position int
}

// Payee is the counterparty of a transaction.
type Payee struct {
	Name string
	ID   int64
}
