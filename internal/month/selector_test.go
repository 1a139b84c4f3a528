package month

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/testutil"
)

type memorySettings struct {
	values map[string]string
	err    error
}

func (m *memorySettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memorySettings) SetSetting(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func fixedClock(t *testing.T, date string) func() time.Time {
	now := testutil.Date(t, date)
	return func() time.Time { return now }
}

func newSelector(t *testing.T, settings *memorySettings) *Selector {
	return NewSelector(settings, testutil.Month(t, "2020-01")).WithClock(fixedClock(t, "2020-09-15"))
}

func TestAvailableMonths(t *testing.T) {
	s := newSelector(t, &memorySettings{values: map[string]string{}})

	months := s.AvailableMonths()
	require.Len(t, months, 10)
	assert.Equal(t, testutil.Month(t, "2020-01"), months[0])
	assert.Equal(t, testutil.Month(t, "2020-10"), months[len(months)-1])

	future := NewSelector(s.settings, testutil.Month(t, "2030-01")).WithClock(s.clock)
	assert.Empty(t, future.AvailableMonths())
}

func TestGetOrInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the current month when empty", func(t *testing.T) {
		settings := &memorySettings{values: map[string]string{}}
		m, err := newSelector(t, settings).GetOrInitialize(ctx)
		require.NoError(t, err)
		assert.Equal(t, testutil.Month(t, "2020-09"), m)
		assert.Equal(t, "2020-09", settings.values[SettingKey])
	})

	t.Run("returns the stored month", func(t *testing.T) {
		settings := &memorySettings{values: map[string]string{SettingKey: "2020-03"}}
		m, err := newSelector(t, settings).GetOrInitialize(ctx)
		require.NoError(t, err)
		assert.Equal(t, testutil.Month(t, "2020-03"), m)
	})

	t.Run("replaces an unreadable value", func(t *testing.T) {
		settings := &memorySettings{values: map[string]string{SettingKey: "March"}}
		m, err := newSelector(t, settings).GetOrInitialize(ctx)
		require.NoError(t, err)
		assert.Equal(t, testutil.Month(t, "2020-09"), m)
		assert.Equal(t, "2020-09", settings.values[SettingKey])
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("locked")
		_, err := newSelector(t, &memorySettings{err: boom}).GetOrInitialize(ctx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	settings := &memorySettings{values: map[string]string{}}
	s := newSelector(t, settings)

	tests := []struct {
		month   string
		wantErr bool
	}{
		{month: "2020-01"},
		{month: "2020-10"},
		{month: "2019-12", wantErr: true},
		{month: "2020-11", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			err := s.Set(ctx, testutil.Month(t, tt.month))
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrMonthOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, settings.values[SettingKey])
		})
	}
}

func TestStep(t *testing.T) {
	ctx := context.Background()
	settings := &memorySettings{values: map[string]string{SettingKey: "2020-10"}}
	s := newSelector(t, settings)

	m, err := s.Step(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, testutil.Month(t, "2020-10"), m, "cannot go past next month")

	m, err = s.Step(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, testutil.Month(t, "2020-09"), m)
	assert.Equal(t, "2020-09", settings.values[SettingKey])
}

func TestSelector_SQLiteSettings(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, nil)
	s := NewSelector(db.Storage, testutil.Month(t, "2020-01")).WithClock(fixedClock(t, "2020-09-15"))

	require.NoError(t, s.Set(ctx, testutil.Month(t, "2020-05")))
	m, err := s.GetOrInitialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Month{Year: 2020, Month: time.May}, m)
}
