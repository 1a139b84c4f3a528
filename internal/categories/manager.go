// Package categories edits the category list as a draft that is either
// discarded or committed to the ledger as a minimal set of batched writes.
package categories

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

// TxRunner runs a function against a transactional ledger.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx service.Ledger) error) error
}

// Manager holds the persisted category list and a working draft of it.
// Both lists are treated as immutable: every edit builds a new draft.
type Manager struct {
	committed       []model.Category
	draft           []model.Category
	defaultGroup    int64
	nextPlaceholder int64
}

// NewManager starts a draft equal to committed. New categories go to defaultGroup.
func NewManager(committed []model.Category, defaultGroup int64) *Manager {
	sorted := make([]model.Category, 0, len(committed))
	for _, c := range committed {
		if !c.IsUnassigned() {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GroupID != sorted[j].GroupID {
			return sorted[i].GroupID < sorted[j].GroupID
		}
		if sorted[i].PositionInGroup != sorted[j].PositionInGroup {
			return sorted[i].PositionInGroup < sorted[j].PositionInGroup
		}
		return sorted[i].ID < sorted[j].ID
	})

	return &Manager{
		committed:       sorted,
		draft:           sorted,
		defaultGroup:    defaultGroup,
		nextPlaceholder: model.UnassignedCategoryID - 1,
	}
}

// Draft returns the working copy.
func (m *Manager) Draft() []model.Category {
	return clone(m.draft)
}

// Committed returns the persisted copy.
func (m *Manager) Committed() []model.Category {
	return clone(m.committed)
}

// AddOrEdit appends a category named name when id is nil, or renames the draft
// entry with that id. Surrounding whitespace is trimmed from name before it is
// checked and stored. It returns false, leaving the draft untouched, when the
// trimmed name is blank or another draft entry already has it. Unknown ids
// also return false.
func (m *Manager) AddOrEdit(id *int64, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	for _, c := range m.draft {
		if c.Name == name && (id == nil || c.ID != *id) {
			return false
		}
	}

	if id == nil {
		position := 0
		for _, c := range m.draft {
			if c.GroupID == m.defaultGroup {
				position++
			}
		}
		added := model.Category{
			ID:              m.nextPlaceholder,
			Name:            name,
			GroupID:         m.defaultGroup,
			PositionInGroup: position,
		}
		m.nextPlaceholder--
		m.draft = append(clone(m.draft), added)
		return true
	}

	i := m.indexOf(*id)
	if i < 0 {
		return false
	}
	draft := clone(m.draft)
	draft[i].Name = name
	m.draft = draft
	return true
}

// Move puts a category at index within its group.
func (m *Manager) Move(id int64, index int) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	group := m.draft[i].GroupID

	var members []model.Category
	for _, c := range m.draft {
		if c.GroupID == group && c.ID != id {
			members = append(members, c)
		}
	}
	if index < 0 || index > len(members) {
		return false
	}
	members = append(members[:index], append([]model.Category{m.draft[i]}, members[index:]...)...)

	draft := make([]model.Category, 0, len(m.draft))
	next := 0
	for _, c := range m.draft {
		if c.GroupID == group {
			draft = append(draft, members[next])
			next++
			continue
		}
		draft = append(draft, c)
	}
	m.draft = normalize(draft)
	return true
}

// MoveToGroup moves a category to the end of another group.
func (m *Manager) MoveToGroup(id, groupID int64) bool {
	i := m.indexOf(id)
	if i < 0 || groupID <= 0 {
		return false
	}
	if m.draft[i].GroupID == groupID {
		return true
	}

	moved := m.draft[i]
	moved.GroupID = groupID
	draft := make([]model.Category, 0, len(m.draft))
	draft = append(draft, m.draft[:i]...)
	draft = append(draft, m.draft[i+1:]...)
	m.draft = normalize(append(draft, moved))
	return true
}

// Remove drops a category from the draft.
func (m *Manager) Remove(id int64) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	draft := make([]model.Category, 0, len(m.draft)-1)
	draft = append(draft, m.draft[:i]...)
	draft = append(draft, m.draft[i+1:]...)
	m.draft = normalize(draft)
	return true
}

// Changed reports whether the draft differs from the committed list in any
// entry's presence, name, group or position.
func (m *Manager) Changed() bool {
	if len(m.draft) != len(m.committed) {
		return true
	}
	byID := make(map[int64]model.Category, len(m.committed))
	for _, c := range m.committed {
		byID[c.ID] = c
	}
	for _, c := range m.draft {
		committed, ok := byID[c.ID]
		if !ok || !committed.SameContent(c) {
			return true
		}
	}
	return false
}

// Discard resets the draft to the committed list.
func (m *Manager) Discard() {
	m.draft = clone(m.committed)
}

// Plan returns the operations Commit would perform.
func (m *Manager) Plan() Plan {
	return Diff(m.committed, normalize(m.draft))
}

// Commit writes the draft to the ledger in one transaction:
//
//  1. transactions of deleted categories move to the unassigned category
//  2. deleted categories are removed, their budgets with them
//  3. new categories are inserted
//  4. every new category gets a zero budget for each of months and for every
//     month that already has budgets
//  5. changed categories are updated in place
//
// Unchanged categories are never touched. On success the draft becomes the
// committed list, with real ids in place of placeholders.
func (m *Manager) Commit(ctx context.Context, store TxRunner, months []model.Month) error {
	draft := normalize(m.draft)
	plan := Diff(m.committed, draft)
	if plan.Empty() {
		return nil
	}

	var assigned map[int64]int64
	err := store.RunInTx(ctx, func(tx service.Ledger) error {
		var err error
		assigned, err = apply(ctx, tx, m.committed, plan, months)
		return err
	})
	if err != nil {
		return err
	}

	committed := make([]model.Category, len(draft))
	for i, c := range draft {
		if id, ok := assigned[c.ID]; ok {
			c.ID = id
		}
		committed[i] = c
	}
	m.committed = committed
	m.draft = committed

	slog.Info("Committed categories",
		"deleted", len(plan.Delete),
		"inserted", len(plan.Insert),
		"updated", len(plan.Update))
	return nil
}

// apply performs plan against tx and returns the real id of every inserted placeholder.
func apply(ctx context.Context, tx service.Ledger, committed []model.Category, plan Plan, months []model.Month) (map[int64]int64, error) {
	if len(plan.Delete) > 0 {
		ids := plan.DeleteIDs()
		if err := unassignTransactions(ctx, tx, ids); err != nil {
			return nil, err
		}
		if err := tx.DeleteCategories(ctx, ids...); err != nil {
			return nil, fmt.Errorf("failed to delete categories: %w", err)
		}
	}

	// A rename into a name that is still taken by a row being renamed away
	// would trip the unique constraint, so such rows first get a free name.
	if staged := stagedRenames(committed, plan); len(staged) > 0 {
		if err := tx.UpdateCategories(ctx, staged...); err != nil {
			return nil, fmt.Errorf("failed to stage category renames: %w", err)
		}
	}

	assigned := make(map[int64]int64, len(plan.Insert))
	if len(plan.Insert) > 0 {
		inserts := make([]model.Category, len(plan.Insert))
		for i, c := range plan.Insert {
			c.ID = 0
			inserts[i] = c
		}
		ids, err := tx.AddCategories(ctx, inserts...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert categories: %w", err)
		}
		for i, c := range plan.Insert {
			assigned[c.ID] = ids[i]
		}

		if err := addZeroBudgets(ctx, tx, ids, months); err != nil {
			return nil, err
		}
	}

	if len(plan.Update) > 0 {
		if err := tx.UpdateCategories(ctx, plan.Update...); err != nil {
			return nil, fmt.Errorf("failed to update categories: %w", err)
		}
	}
	return assigned, nil
}

func unassignTransactions(ctx context.Context, tx service.Ledger, categoryIDs []int64) error {
	transactions, err := tx.TransactionsOfCategories(ctx, categoryIDs...)
	if err != nil {
		return fmt.Errorf("failed to load transactions of deleted categories: %w", err)
	}
	if len(transactions) == 0 {
		return nil
	}
	for i := range transactions {
		transactions[i].CategoryID = model.UnassignedCategoryID
	}
	if err := tx.UpdateTransactions(ctx, transactions...); err != nil {
		return fmt.Errorf("failed to unassign transactions: %w", err)
	}
	slog.Info("Unassigned transactions of deleted categories", "transactions", len(transactions))
	return nil
}

func addZeroBudgets(ctx context.Context, tx service.Ledger, categoryIDs []int64, months []model.Month) error {
	budgeted, err := tx.MonthsWithBudgets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load budget months: %w", err)
	}

	seen := make(map[model.Month]bool, len(months)+len(budgeted))
	var all []model.Month
	for _, month := range append(append([]model.Month{}, months...), budgeted...) {
		if !seen[month] {
			seen[month] = true
			all = append(all, month)
		}
	}
	if len(all) == 0 {
		return nil
	}

	budgets := make([]model.Budget, 0, len(categoryIDs)*len(all))
	for _, id := range categoryIDs {
		for _, month := range all {
			budgets = append(budgets, model.Budget{CategoryID: id, Month: month})
		}
	}
	if _, err := tx.AddBudgets(ctx, budgets...); err != nil {
		return fmt.Errorf("failed to add budgets for new categories: %w", err)
	}
	return nil
}

// stagedRenames returns temporary renames for updated rows whose current name
// is wanted by an insert or by another update.
func stagedRenames(committed []model.Category, plan Plan) []model.Category {
	wanted := make(map[string]int64, len(plan.Insert)+len(plan.Update))
	for _, c := range plan.Insert {
		wanted[c.Name] = c.ID
	}
	for _, c := range plan.Update {
		wanted[c.Name] = c.ID
	}

	byID := make(map[int64]model.Category, len(committed))
	for _, c := range committed {
		byID[c.ID] = c
	}

	var staged []model.Category
	for _, c := range plan.Update {
		current := byID[c.ID]
		if current.Name == c.Name {
			continue
		}
		if claimant, ok := wanted[current.Name]; ok && claimant != c.ID {
			current.Name = fmt.Sprintf("%s (renaming %d)", current.Name, current.ID)
			staged = append(staged, current)
		}
	}
	return staged
}

func (m *Manager) indexOf(id int64) int {
	for i, c := range m.draft {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func clone(categories []model.Category) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	return out
}
