package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Month
		wantErr bool
	}{
		{name: "valid", input: "2020-09", want: Month{Year: 2020, Month: time.September}},
		{name: "january", input: "2021-01", want: Month{Year: 2021, Month: time.January}},
		{name: "missing month", input: "2020", wantErr: true},
		{name: "out of range month", input: "2020-13", wantErr: true},
		{name: "garbage", input: "sept", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestMonth_AddMonths(t *testing.T) {
	m := NewMonth(2020, time.November)

	assert.Equal(t, NewMonth(2020, time.December), m.AddMonths(1))
	assert.Equal(t, NewMonth(2021, time.January), m.AddMonths(2))
	assert.Equal(t, NewMonth(2019, time.November), m.AddMonths(-12))
	assert.Equal(t, NewMonth(2021, time.January), NewMonth(2020, 13))
}

func TestMonth_Compare(t *testing.T) {
	a := NewMonth(2020, time.September)
	b := NewMonth(2020, time.October)
	c := NewMonth(2019, time.December)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, c.Before(a))
	assert.Equal(t, 0, a.Compare(NewMonth(2020, time.September)))
}

func TestMonth_Contains(t *testing.T) {
	m := NewMonth(2020, time.September)

	assert.True(t, m.Contains(time.Date(2020, time.September, 30, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.Contains(time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2020, time.October, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonth_Days(t *testing.T) {
	m := NewMonth(2020, time.February)

	assert.Equal(t, time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC), m.FirstDay())
	assert.Equal(t, time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), m.LastDay())
}

func TestMonthRange(t *testing.T) {
	got := MonthRange(NewMonth(2020, time.November), NewMonth(2021, time.February))
	require.Len(t, got, 4)
	assert.Equal(t, "2020-11", got[0].String())
	assert.Equal(t, "2021-02", got[3].String())

	assert.Nil(t, MonthRange(NewMonth(2021, time.February), NewMonth(2020, time.November)))
	assert.Len(t, MonthRange(NewMonth(2020, time.May), NewMonth(2020, time.May)), 1)
}
