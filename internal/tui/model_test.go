package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

type mockEditor struct {
	mock.Mock
}

func (m *mockEditor) SetBudgeted(ctx context.Context, budgetID int64, amount model.Amount) error {
	args := m.Called(ctx, budgetID, amount)
	return args.Error(0)
}

func (m *mockEditor) ZeroBudget(ctx context.Context, budgetID int64) error {
	args := m.Called(ctx, budgetID)
	return args.Error(0)
}

func (m *mockEditor) BudgetFromLastMonth(ctx context.Context, budgetID int64, navigable []model.Month) (bool, error) {
	args := m.Called(ctx, budgetID, navigable)
	return args.Bool(0), args.Error(1)
}

func (m *mockEditor) ClearMonth(ctx context.Context, month model.Month) (int, error) {
	args := m.Called(ctx, month)
	return args.Int(0), args.Error(1)
}

type fakeSelector struct {
	stored    *model.Month
	available []model.Month
	sets      []model.Month
	mu        sync.Mutex
}

func (s *fakeSelector) GetOrInitialize(_ context.Context) (model.Month, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		m := s.available[len(s.available)-2]
		s.stored = &m
	}
	return *s.stored, nil
}

func (s *fakeSelector) Set(_ context.Context, m model.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = &m
	s.sets = append(s.sets, m)
	return nil
}

func (s *fakeSelector) AvailableMonths() []model.Month {
	return s.available
}

var (
	august    = model.NewMonth(2020, 8)
	september = model.NewMonth(2020, 9)
	october   = model.NewMonth(2020, 10)
)

func septemberResult() engine.Result {
	return engine.Result{
		Month:        september,
		ToBeBudgeted: 10599,
		Groups: []engine.GroupView{
			{
				GroupID: 1,
				Name:    "Everyday",
				Items: []engine.ViewItem{
					{CategoryID: 1, CategoryName: "cat1", BudgetID: 11, Budgeted: 1000, Available: 1710},
					{CategoryID: 2, CategoryName: "cat2", BudgetID: 12, Budgeted: 500, Available: 820},
				},
			},
			{
				GroupID: 2,
				Name:    "Savings",
				Items: []engine.ViewItem{
					{CategoryID: 4, CategoryName: "cat4", BudgetID: 14, Budgeted: 0, Available: -1700},
				},
			},
		},
	}
}

type harness struct {
	editor   *mockEditor
	selector *fakeSelector
	results  chan engine.Result
	months   chan model.Month
}

func newHarness(t *testing.T) (*harness, Model) {
	t.Helper()
	h := &harness{
		editor:   &mockEditor{},
		selector: &fakeSelector{available: []model.Month{august, september, october}},
		results:  make(chan engine.Result, 1),
		months:   make(chan model.Month, 1),
	}
	t.Cleanup(func() { h.editor.AssertExpectations(t) })

	cfg := defaultConfig()
	cfg.Width = 100
	m := newModel(context.Background(), cfg, h.editor, h.selector, h.results, h.months)
	return h, m
}

// loaded returns a model showing the September budget.
func loaded(t *testing.T) (*harness, Model) {
	t.Helper()
	h, m := newHarness(t)
	m = update(t, m, monthLoadedMsg{month: september})
	<-h.months
	m = update(t, m, resultMsg{result: septemberResult()})
	return h, m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadMonth(t *testing.T) {
	h, m := newHarness(t)

	msg := m.loadMonth()()
	loadedMsg, ok := msg.(monthLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loadedMsg.err)
	assert.Equal(t, september, loadedMsg.month)

	m = update(t, m, loadedMsg)
	assert.Equal(t, september, m.month)
	assert.Equal(t, september, <-h.months)
}

func TestModel_LoadMonthOutOfRange(t *testing.T) {
	h, m := newHarness(t)
	stale := model.NewMonth(2019, 1)
	h.selector.stored = &stale

	msg := m.loadMonth()()
	loadedMsg, ok := msg.(monthLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, october, loadedMsg.month)
	assert.Equal(t, []model.Month{october}, h.selector.sets)
}

func TestModel_ShowsResultOfSelectedMonth(t *testing.T) {
	_, m := loaded(t)

	require.NotNil(t, m.result)
	assert.Len(t, m.items, 3)

	view := m.View()
	for _, want := range []string{"September 2020", "105.99", "Everyday", "cat1", "17.10", "cat2", "Savings", "cat4", "-17.00"} {
		assert.Contains(t, view, want)
	}
}

func TestModel_IgnoresResultOfAnotherMonth(t *testing.T) {
	_, m := newHarness(t)
	m = update(t, m, monthLoadedMsg{month: october})

	m, cmd := updateCmd(t, m, resultMsg{result: septemberResult()})

	assert.Nil(t, m.result)
	assert.NotNil(t, cmd, "keeps listening for results")
	assert.Contains(t, m.View(), "Loading budget")
}

func TestModel_CursorStaysOnRows(t *testing.T) {
	_, m := loaded(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	for range 5 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 2, m.cursor)

	item, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "cat4", item.CategoryName)
}

func TestModel_CursorClampedWhenRowsShrink(t *testing.T) {
	_, m := loaded(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	smaller := septemberResult()
	smaller.Groups = smaller.Groups[:1]
	m = update(t, m, resultMsg{result: smaller})

	assert.Equal(t, 1, m.cursor)
}

func TestModel_EditBudgeted(t *testing.T) {
	h, m := loaded(t)
	h.editor.On("SetBudgeted", mock.Anything, int64(11), model.Amount(1250)).Return(nil).Once()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateEditing, m.state)
	assert.Equal(t, "10.00", m.input.Value())

	m.input.SetValue("12.50")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateBrowse, m.state)
	require.NotNil(t, cmd)

	done, ok := cmd().(editDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	m = update(t, m, done)
	assert.Contains(t, m.View(), "cat1 budgeted 12.50")
}

func TestModel_EditRejectsInvalidAmount(t *testing.T) {
	_, m := loaded(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("12.505")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, StateEditing, m.state)
	require.Error(t, m.lastError)
	assert.Contains(t, m.View(), "decimal places")
}

func TestModel_EditCanceled(t *testing.T) {
	_, m := loaded(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, StateBrowse, m.state)
	assert.False(t, m.quitting)
}

func TestModel_ZeroBudget(t *testing.T) {
	h, m := loaded(t)
	h.editor.On("ZeroBudget", mock.Anything, int64(12)).Return(nil).Once()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := updateCmd(t, m, runes("z"))
	require.NotNil(t, cmd)

	done, ok := cmd().(editDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "cat2 zeroed", done.status)
}

func TestModel_BudgetFromLastMonth(t *testing.T) {
	h, m := loaded(t)
	navigable := []model.Month{august, september, october}
	h.editor.On("BudgetFromLastMonth", mock.Anything, int64(11), navigable).Return(false, nil).Once()

	_, cmd := updateCmd(t, m, runes("l"))
	require.NotNil(t, cmd)

	done, ok := cmd().(editDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "No previous month to copy from", done.status)
}

func TestModel_EditFailureShown(t *testing.T) {
	h, m := loaded(t)
	h.editor.On("ZeroBudget", mock.Anything, int64(11)).Return(errors.New("database is locked")).Once()

	m, cmd := updateCmd(t, m, runes("z"))
	m = update(t, m, cmd())

	assert.Contains(t, m.View(), "database is locked")
}

func TestModel_ClearMonth(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		h, m := loaded(t)
		h.editor.On("ClearMonth", mock.Anything, september).Return(3, nil).Once()

		m = update(t, m, runes("c"))
		require.Equal(t, StateConfirmClear, m.state)
		assert.Contains(t, m.View(), "Set every budget of September 2020 to 0?")

		m, cmd := updateCmd(t, m, runes("y"))
		assert.Equal(t, StateBrowse, m.state)
		require.NotNil(t, cmd)

		done, ok := cmd().(editDoneMsg)
		require.True(t, ok)
		assert.Equal(t, "Cleared 3 budgets of September 2020", done.status)
	})

	t.Run("declined", func(t *testing.T) {
		_, m := loaded(t)

		m = update(t, m, runes("c"))
		m, cmd := updateCmd(t, m, runes("n"))

		assert.Nil(t, cmd)
		assert.Equal(t, StateBrowse, m.state)
		assert.Equal(t, "Clear canceled", m.status)
	})
}

func TestModel_MonthNavigation(t *testing.T) {
	h, m := loaded(t)

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, october, m.month)
	assert.Nil(t, m.result, "previous month's budget is not shown")
	assert.Equal(t, october, <-h.months)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []model.Month{october}, h.selector.sets)

	m, cmd = updateCmd(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, october, m.month, "last navigable month")
	assert.Nil(t, cmd)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, august, m.month)
	assert.Equal(t, august, <-h.months, "only the latest selection is pending")
}

func TestModel_HelpToggle(t *testing.T) {
	_, m := loaded(t)
	assert.False(t, m.help.ShowAll)

	m = update(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "budget from last month")
}

func TestModel_StartsWithFullHelp(t *testing.T) {
	h, _ := newHarness(t)
	cfg := defaultConfig()
	WithFullHelp(true)(&cfg)

	m := newModel(context.Background(), cfg, h.editor, h.selector, h.results, h.months)
	assert.True(t, m.help.ShowAll)
}

func TestModel_Quit(t *testing.T) {
	_, m := loaded(t)

	m, cmd := updateCmd(t, m, runes("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_QuitsWhenPipelineStops(t *testing.T) {
	h, m := newHarness(t)
	close(h.results)

	msg := m.waitForResult()()
	assert.IsType(t, resultsClosedMsg{}, msg)

	m = update(t, m, msg)
	assert.True(t, m.quitting)
}

func TestMonthWriter_DropsSupersededWrites(t *testing.T) {
	s := &fakeSelector{available: []model.Month{august, september, october}}
	w := &monthWriter{selector: s}

	first := w.next()
	second := w.next()

	require.NoError(t, w.write(context.Background(), second, october))
	require.NoError(t, w.write(context.Background(), first, august))

	assert.Equal(t, []model.Month{october}, s.sets)
}
