package categories

import (
	"sort"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Plan is the set of ledger operations that turns committed into draft.
type Plan struct {
	// Delete holds committed categories missing from the draft.
	Delete []model.Category
	// Insert holds draft categories that have no row yet. Their ids are placeholders.
	Insert []model.Category
	// Update holds draft categories whose name, group or position changed.
	Update []model.Category
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Insert) == 0 && len(p.Update) == 0
}

// DeleteIDs returns the ids of the categories to delete.
func (p Plan) DeleteIDs() []int64 {
	ids := make([]int64, 0, len(p.Delete))
	for _, c := range p.Delete {
		ids = append(ids, c.ID)
	}
	return ids
}

// Diff compares draft with committed. Entries are matched by id; a draft entry
// with a placeholder id, or an id unknown to committed, is an insert.
func Diff(committed, draft []model.Category) Plan {
	byID := make(map[int64]model.Category, len(committed))
	for _, c := range committed {
		byID[c.ID] = c
	}

	var plan Plan
	kept := make(map[int64]bool, len(draft))
	for _, c := range draft {
		previous, persisted := byID[c.ID]
		if IsPlaceholder(c.ID) || !persisted {
			plan.Insert = append(plan.Insert, c)
			continue
		}
		kept[c.ID] = true
		if !previous.SameContent(c) {
			plan.Update = append(plan.Update, c)
		}
	}

	for _, c := range committed {
		if !kept[c.ID] {
			plan.Delete = append(plan.Delete, c)
		}
	}
	sort.Slice(plan.Delete, func(i, j int) bool { return plan.Delete[i].ID < plan.Delete[j].ID })
	return plan
}

// IsPlaceholder reports whether id was handed out by a Manager for a category
// that is not persisted yet.
func IsPlaceholder(id int64) bool {
	return id < model.UnassignedCategoryID
}

// normalize sets every category's position to its index among the entries of
// its group, in slice order. It returns a new slice.
func normalize(categories []model.Category) []model.Category {
	out := make([]model.Category, len(categories))
	next := make(map[int64]int)
	for i, c := range categories {
		c.PositionInGroup = next[c.GroupID]
		next[c.GroupID]++
		out[i] = c
	}
	return out
}
