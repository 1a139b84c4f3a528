package model

import (
	"fmt"
	"time"
)

// MonthLayout is the textual form of a Month, also used as its storage key.
const MonthLayout = "2006-01"

// Month identifies a calendar month independent of day and time zone.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns the month for year and m, normalizing overflowing months
// (month 13 of 2020 is January 2021).
func NewMonth(year int, m time.Month) Month {
	t := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf truncates t to its month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the month of now in the local time zone.
func CurrentMonth(now time.Time) Month {
	return MonthOf(now.In(time.Local))
}

// ParseMonth parses a month in YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return MonthOf(t), nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label formats the month for display, e.g. "September 2020".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// AddMonths returns m shifted by n months.
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year, m.Month+time.Month(n))
}

// Compare returns -1, 0 or +1 depending on whether m is before, equal to or after o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

// Before reports whether m is strictly before o.
func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }

// After reports whether m is strictly after o.
func (m Month) After(o Month) bool { return m.Compare(o) > 0 }

// FirstDay returns midnight UTC of the first day of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC of the last day of the month.
func (m Month) LastDay() time.Time {
	return m.AddMonths(1).FirstDay().AddDate(0, 0, -1)
}

// Contains reports whether t falls on or before the end of m.
func (m Month) Contains(t time.Time) bool {
	return !MonthOf(t).After(m)
}

// MonthRange returns every month from from to to, both inclusive.
// It returns nil when to is before from.
func MonthRange(from, to Month) []Month {
	if to.Before(from) {
		return nil
	}
	var months []Month
	for m := from; !m.After(to); m = m.AddMonths(1) {
		months = append(months, m)
	}
	return months
}
