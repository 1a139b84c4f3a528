// Package month keeps track of which budget month the user is looking at.
package month

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

// SettingKey is the settings key the selected month is stored under.
const SettingKey = "selected_month"

// Selector persists the selected month and the range of months that can be selected.
type Selector struct {
	settings service.SettingsStore
	clock    func() time.Time
	start    model.Month
}

// NewSelector creates a Selector whose first navigable month is start.
func NewSelector(settings service.SettingsStore, start model.Month) *Selector {
	return &Selector{settings: settings, start: start, clock: time.Now}
}

// WithClock replaces the clock used to find the current month.
func (s *Selector) WithClock(clock func() time.Time) *Selector {
	s.clock = clock
	return s
}

// Current returns the month containing the clock's now.
func (s *Selector) Current() model.Month {
	return model.CurrentMonth(s.clock())
}

// Start returns the first navigable month.
func (s *Selector) Start() model.Month {
	return s.start
}

// AvailableMonths returns every month from the start month through the month
// after the current one. It is empty when start lies further in the future.
func (s *Selector) AvailableMonths() []model.Month {
	return model.MonthRange(s.start, s.Current().AddMonths(1))
}

// GetOrInitialize returns the stored month. When none is stored, or the stored
// value is unreadable, the current month is stored and returned.
func (s *Selector) GetOrInitialize(ctx context.Context) (model.Month, error) {
	raw, ok, err := s.settings.GetSetting(ctx, SettingKey)
	if err != nil {
		return model.Month{}, fmt.Errorf("failed to read selected month: %w", err)
	}
	if ok {
		m, err := model.ParseMonth(raw)
		if err == nil {
			return m, nil
		}
		slog.Warn("Ignoring unreadable selected month", "value", raw, "error", err)
	}

	current := s.Current()
	if err := s.settings.SetSetting(ctx, SettingKey, current.String()); err != nil {
		return model.Month{}, fmt.Errorf("failed to store selected month: %w", err)
	}
	slog.Debug("Initialized selected month", "month", current.String())
	return current, nil
}

// Set stores m as the selected month. Months outside AvailableMonths are
// rejected with common.ErrMonthOutOfRange.
func (s *Selector) Set(ctx context.Context, m model.Month) error {
	if !s.Navigable(m) {
		return fmt.Errorf("%s: %w", m, common.ErrMonthOutOfRange)
	}
	if err := s.settings.SetSetting(ctx, SettingKey, m.String()); err != nil {
		return fmt.Errorf("failed to store selected month: %w", err)
	}
	return nil
}

// Navigable reports whether m is one of AvailableMonths.
func (s *Selector) Navigable(m model.Month) bool {
	return !m.Before(s.start) && !m.After(s.Current().AddMonths(1))
}

// Step moves the selection by delta months, staying within AvailableMonths,
// and returns the new selection.
func (s *Selector) Step(ctx context.Context, delta int) (model.Month, error) {
	current, err := s.GetOrInitialize(ctx)
	if err != nil {
		return model.Month{}, err
	}
	next := current.AddMonths(delta)
	if !s.Navigable(next) {
		return current, nil
	}
	if err := s.Set(ctx, next); err != nil {
		return model.Month{}, err
	}
	return next, nil
}
