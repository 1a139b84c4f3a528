package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/month"
	"github.com/Veraticus/zerobudget/internal/storage"
)

// startMonthSettingKey stores the first navigable month when none is configured,
// so the range does not move forward as time passes.
const startMonthSettingKey = "start_month"

// session is an open ledger plus the month selector bound to it.
type session struct {
	store    *storage.SQLiteStorage
	selector *month.Selector
}

// openSession opens and migrates the ledger and prepares the month selector.
func openSession(ctx context.Context) (*session, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	selector, err := newSelector(ctx, store, time.Now())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{store: store, selector: selector}, nil
}

func (s *session) Close() {
	_ = s.store.Close()
}

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(appConfig.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newSelector builds the month selector. The start month comes from the
// configuration, else from the one recorded at first run, else it is now.
func newSelector(ctx context.Context, store *storage.SQLiteStorage, now time.Time) (*month.Selector, error) {
	if !appConfig.StartMonth.IsZero() {
		return month.NewSelector(store, appConfig.StartMonth), nil
	}

	raw, ok, err := store.GetSetting(ctx, startMonthSettingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read start month: %w", err)
	}
	if ok {
		start, err := model.ParseMonth(raw)
		if err == nil {
			return month.NewSelector(store, start), nil
		}
	}

	start := model.CurrentMonth(now)
	if err := store.SetSetting(ctx, startMonthSettingKey, start.String()); err != nil {
		return nil, fmt.Errorf("failed to store start month: %w", err)
	}
	return month.NewSelector(store, start), nil
}

// resolveMonth parses a YYYY-MM flag value, falling back to the selected month.
// The month must be navigable.
func (s *session) resolveMonth(ctx context.Context, flag string) (model.Month, error) {
	if flag == "" {
		return s.selector.GetOrInitialize(ctx)
	}

	m, err := model.ParseMonth(flag)
	if err != nil {
		return model.Month{}, common.NewUserError(fmt.Sprintf("Invalid month %q, expected YYYY-MM", flag), err)
	}
	if !s.selector.Navigable(m) {
		return model.Month{}, monthOutOfRange(s.selector, m)
	}
	return m, nil
}

func monthOutOfRange(selector *month.Selector, m model.Month) error {
	available := selector.AvailableMonths()
	if len(available) == 0 {
		return common.NewUserError(fmt.Sprintf("No months are available yet (budget starts %s)", selector.Start()), common.ErrMonthOutOfRange)
	}
	return common.NewUserError(
		fmt.Sprintf("%s is outside the budget (%s to %s)", m, available[0], available[len(available)-1]),
		common.ErrMonthOutOfRange)
}

// findCategory resolves ref, an id or a name, among categories.
// Names match exactly first, then case-insensitively when that is unambiguous.
func findCategory(categories []model.Category, ref string) (model.Category, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range categories {
			if c.ID == id {
				return c, nil
			}
		}
	}

	var folded []model.Category
	for _, c := range categories {
		if c.Name == ref {
			return c, nil
		}
		if strings.EqualFold(c.Name, ref) {
			folded = append(folded, c)
		}
	}
	switch len(folded) {
	case 1:
		return folded[0], nil
	case 0:
		return model.Category{}, common.NewUserError(fmt.Sprintf("No category %q", ref), common.ErrNotFound)
	default:
		return model.Category{}, common.NewUserError(fmt.Sprintf("Category %q is ambiguous", ref), common.ErrInvalidInput)
	}
}

// findGroup resolves ref, an id or a name, among groups.
func findGroup(groups []model.Group, ref string) (model.Group, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, g := range groups {
			if g.ID == id {
				return g, nil
			}
		}
	}
	for _, g := range groups {
		if strings.EqualFold(g.Name, ref) {
			return g, nil
		}
	}
	return model.Group{}, common.NewUserError(fmt.Sprintf("No group %q", ref), common.ErrNotFound)
}

// resolveCategoryID maps a transaction's category reference to an id. An empty
// reference, "-1" or "unassigned" means the unassigned category.
func resolveCategoryID(categories []model.Category, ref string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "-1", "unassigned", strings.ToLower(model.Unassigned.Name):
		return model.UnassignedCategoryID, nil
	}
	c, err := findCategory(categories, ref)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", s), err)
	}
	return d, nil
}

func parseAmount(s string) (model.Amount, error) {
	a, err := model.ParseAmount(s)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("Invalid amount %q", s), err)
	}
	return a, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, common.NewUserError(fmt.Sprintf("Invalid id %q", arg), errors.Join(common.ErrInvalidInput, err))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func categoryName(byID map[int64]model.Category, id int64) string {
	if id == model.UnassignedCategoryID {
		return model.Unassigned.Name
	}
	if c, ok := byID[id]; ok {
		return c.Name
	}
	return fmt.Sprintf("#%d", id)
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if minutes := int(duration.Minutes()); minutes > 1 {
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if hours := int(duration.Hours()); hours > 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if days := int(duration.Hours() / 24); days > 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}
