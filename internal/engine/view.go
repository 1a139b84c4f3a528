package engine

import (
	"log/slog"
	"sort"

	"github.com/Veraticus/zerobudget/internal/model"
)

// ViewItem is one category row of the budget screen.
type ViewItem struct {
	CategoryName string
	CategoryID   int64
	BudgetID     int64
	Position     int
	Budgeted     model.Amount
	Available    model.Amount
}

// GroupView is a group heading with its category rows in display order.
type GroupView struct {
	Name    string
	Items   []ViewItem
	GroupID int64
}

// Budgeted returns the total budgeted across the group's rows.
func (g GroupView) Budgeted() model.Amount {
	var total model.Amount
	for _, item := range g.Items {
		total += item.Budgeted
	}
	return total
}

// Available returns the total available across the group's rows.
func (g GroupView) Available() model.Amount {
	var total model.Amount
	for _, item := range g.Items {
		total += item.Available
	}
	return total
}

// AssembleView builds the grouped budget of month. Groups are ordered by
// position and their rows by position in group; rows whose budget belongs to
// another month are ignored.
//
// If any row lacks an available figure, ok is false and no view is returned:
// the caller waits for the next computation instead of showing stale numbers.
func AssembleView(
	month model.Month,
	groups []model.Group,
	budgetsWithCategoryOfMonth []model.BudgetWithCategory,
	available map[int64]model.Amount,
) (view []GroupView, ok bool) {
	sorted := make([]model.Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	itemsByGroup := make(map[int64][]ViewItem, len(sorted))
	for _, row := range budgetsWithCategoryOfMonth {
		if row.Budget.Month != month {
			continue
		}
		amount, ready := available[row.Category.ID]
		if !ready {
			return nil, false
		}
		itemsByGroup[row.Category.GroupID] = append(itemsByGroup[row.Category.GroupID], ViewItem{
			CategoryID:   row.Category.ID,
			CategoryName: row.Category.Name,
			BudgetID:     row.Budget.ID,
			Position:     row.Category.PositionInGroup,
			Budgeted:     row.Budget.Budgeted,
			Available:    amount,
		})
	}

	view = make([]GroupView, 0, len(sorted))
	for _, g := range sorted {
		items := itemsByGroup[g.ID]
		delete(itemsByGroup, g.ID)
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Position != items[j].Position {
				return items[i].Position < items[j].Position
			}
			return items[i].CategoryID < items[j].CategoryID
		})
		view = append(view, GroupView{GroupID: g.ID, Name: g.Name, Items: items})
	}

	for groupID, items := range itemsByGroup {
		slog.Warn("data integrity: budget rows reference an unknown group",
			"group_id", groupID, "rows", len(items), "month", month.String())
	}
	return view, true
}
