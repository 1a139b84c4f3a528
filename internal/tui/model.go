// Package tui is the interactive budget screen. It shows the budget of the
// selected month and re-renders whenever the pipeline publishes a new result.
package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/tui/themes"
)

const storeTimeout = 10 * time.Second

// State represents the current state of the TUI.
type State int

const (
	StateBrowse State = iota
	StateEditing
	StateConfirmClear
)

// Model holds the main TUI state.
type Model struct {
	ctx       context.Context
	lastError error
	editor    BudgetEditor
	selector  MonthSelector
	writer    *monthWriter
	results   <-chan engine.Result
	months    chan model.Month
	result    *engine.Result
	theme     themes.Theme
	keymap    KeyMap
	help      help.Model
	input     textinput.Model
	status    string
	items     []engine.ViewItem
	navigable []model.Month
	month     model.Month
	cursor    int
	width     int
	height    int
	state     State
	quitting  bool
}

// newModel creates a model reading results from results and announcing month
// changes on months.
func newModel(ctx context.Context, cfg Config, editor BudgetEditor, selector MonthSelector,
	results <-chan engine.Result, months chan model.Month,
) Model {
	input := textinput.New()
	input.Placeholder = "0.00"
	input.Prompt = "Budgeted: "
	input.CharLimit = 16

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	return Model{
		ctx:       ctx,
		editor:    editor,
		selector:  selector,
		writer:    &monthWriter{selector: selector},
		results:   results,
		months:    months,
		theme:     cfg.Theme,
		keymap:    DefaultKeyMap(),
		help:      h,
		input:     input,
		navigable: selector.AvailableMonths(),
		width:     cfg.Width,
		height:    cfg.Height,
	}
}

// Init loads the stored month and starts listening for results.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadMonth(), m.waitForResult())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case monthLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.month = msg.month
		offer(m.months, msg.month)
		return m, nil

	case resultMsg:
		if msg.result.Month == m.month {
			r := msg.result
			m.result = &r
			m.items = flatten(r.Groups)
			m.clampCursor()
		}
		return m, m.waitForResult()

	case resultsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case editDoneMsg:
		m.lastError = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case StateEditing:
			return m.updateEditing(msg)
		case StateConfirmClear:
			return m.updateConfirmClear(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	if m.state == StateEditing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.lastError = nil

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.PrevMonth):
		return m.stepMonth(-1)

	case key.Matches(msg, m.keymap.NextMonth):
		return m.stepMonth(1)

	case key.Matches(msg, m.keymap.Edit):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.state = StateEditing
		m.input.SetValue(item.Budgeted.String())
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Zero):
		if item, ok := m.selected(); ok {
			return m, m.zeroBudget(item)
		}

	case key.Matches(msg, m.keymap.FromLast):
		if item, ok := m.selected(); ok {
			return m, m.budgetFromLastMonth(item)
		}

	case key.Matches(msg, m.keymap.Clear):
		if m.result != nil {
			m.state = StateConfirmClear
		}
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateBrowse
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		amount, err := model.ParseAmount(m.input.Value())
		if err != nil {
			m.lastError = err
			return m, nil
		}
		item, ok := m.selected()
		m.state = StateBrowse
		m.input.Blur()
		m.lastError = nil
		if !ok {
			return m, nil
		}
		return m, m.setBudgeted(item, amount)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state = StateBrowse
	if key.Matches(msg, m.keymap.Confirm) {
		return m, m.clearMonth(m.month)
	}
	m.status = "Clear canceled"
	return m, nil
}

// stepMonth moves the selection by delta months within the navigable range.
func (m Model) stepMonth(delta int) (tea.Model, tea.Cmd) {
	if m.month.IsZero() {
		return m, nil
	}
	next := m.month.AddMonths(delta)
	if !containsMonth(m.navigable, next) {
		return m, nil
	}
	m.month = next
	m.result = nil
	m.items = nil
	offer(m.months, next)
	return m, m.persistMonth(next)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

func (m Model) selected() (engine.ViewItem, bool) {
	if m.result == nil || m.cursor < 0 || m.cursor >= len(m.items) {
		return engine.ViewItem{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// flatten lists the category rows of every group in display order.
func flatten(groups []engine.GroupView) []engine.ViewItem {
	var items []engine.ViewItem
	for _, g := range groups {
		items = append(items, g.Items...)
	}
	return items
}

// offer replaces any month the pipeline has not picked up yet with month.
// The model is the only sender, so the send never blocks.
func offer(ch chan model.Month, month model.Month) {
	select {
	case <-ch:
	default:
	}
	ch <- month
}

func containsMonth(months []model.Month, m model.Month) bool {
	for _, candidate := range months {
		if candidate == m {
			return true
		}
	}
	return false
}

// monthWriter persists the selected month. A write superseded by a newer
// selection is dropped.
type monthWriter struct {
	selector MonthSelector
	mu       sync.Mutex
	seq      uint64
}

func (w *monthWriter) next() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	return w.seq
}

func (w *monthWriter) write(ctx context.Context, seq uint64, month model.Month) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.seq {
		return nil
	}
	return w.selector.Set(ctx, month)
}
