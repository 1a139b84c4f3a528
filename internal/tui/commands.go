package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

// waitForResult blocks until the pipeline publishes the next result.
func (m Model) waitForResult() tea.Cmd {
	results := m.results
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return resultsClosedMsg{}
		}
		return resultMsg{result: r}
	}
}

// loadMonth reads the stored month, initializing it on first use.
func (m Model) loadMonth() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		month, err := m.selector.GetOrInitialize(ctx)
		if err != nil {
			return monthLoadedMsg{err: fmt.Errorf("failed to load selected month: %w", err)}
		}
		if !containsMonth(m.navigable, month) && len(m.navigable) > 0 {
			month = m.navigable[len(m.navigable)-1]
			if err := m.selector.Set(ctx, month); err != nil {
				return monthLoadedMsg{err: fmt.Errorf("failed to store selected month: %w", err)}
			}
		}
		return monthLoadedMsg{month: month}
	}
}

// persistMonth stores month as the selection.
func (m Model) persistMonth(month model.Month) tea.Cmd {
	w := m.writer
	seq := w.next()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		if err := w.write(ctx, seq, month); err != nil {
			return editDoneMsg{err: fmt.Errorf("failed to store selected month: %w", err)}
		}
		return nil
	}
}

func (m Model) setBudgeted(item engine.ViewItem, amount model.Amount) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		if err := m.editor.SetBudgeted(ctx, item.BudgetID, amount); err != nil {
			return editDoneMsg{err: err}
		}
		return editDoneMsg{status: fmt.Sprintf("%s budgeted %s", item.CategoryName, amount)}
	}
}

func (m Model) zeroBudget(item engine.ViewItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		if err := m.editor.ZeroBudget(ctx, item.BudgetID); err != nil {
			return editDoneMsg{err: err}
		}
		return editDoneMsg{status: fmt.Sprintf("%s zeroed", item.CategoryName)}
	}
}

func (m Model) budgetFromLastMonth(item engine.ViewItem) tea.Cmd {
	navigable := m.navigable
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		copied, err := m.editor.BudgetFromLastMonth(ctx, item.BudgetID, navigable)
		if err != nil {
			return editDoneMsg{err: err}
		}
		if !copied {
			return editDoneMsg{status: "No previous month to copy from"}
		}
		return editDoneMsg{status: fmt.Sprintf("%s budgeted as last month", item.CategoryName)}
	}
}

func (m Model) clearMonth(month model.Month) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		n, err := m.editor.ClearMonth(ctx, month)
		if err != nil {
			return editDoneMsg{err: err}
		}
		return editDoneMsg{status: fmt.Sprintf("Cleared %d budgets of %s", n, month.Label())}
	}
}
