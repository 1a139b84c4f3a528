package tui

import (
	"context"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/tui/themes"
)

// BudgetEditor applies the edits offered on the budget screen.
type BudgetEditor interface {
	SetBudgeted(ctx context.Context, budgetID int64, amount model.Amount) error
	ZeroBudget(ctx context.Context, budgetID int64) error
	BudgetFromLastMonth(ctx context.Context, budgetID int64, navigable []model.Month) (bool, error)
	ClearMonth(ctx context.Context, month model.Month) (int, error)
}

// MonthSelector persists the month on screen.
type MonthSelector interface {
	GetOrInitialize(ctx context.Context) (model.Month, error)
	Set(ctx context.Context, m model.Month) error
	AvailableMonths() []model.Month
}

// Recomputer produces a fresh budget whenever the ledger or the month changes.
type Recomputer interface {
	Run(ctx context.Context, months <-chan model.Month) <-chan engine.Result
}

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithFullHelp starts the screen with every key binding listed.
func WithFullHelp(enabled bool) Option {
	return func(c *Config) {
		c.ShowHelp = enabled
	}
}
