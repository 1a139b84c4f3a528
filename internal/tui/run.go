package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Run shows the budget screen until the user quits or ctx is done.
func Run(ctx context.Context, pipeline Recomputer, editor BudgetEditor, selector MonthSelector, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	months := make(chan model.Month, 1)
	results := pipeline.Run(ctx, months)

	program := tea.NewProgram(
		newModel(ctx, cfg, editor, selector, results, months),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
