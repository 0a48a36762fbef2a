package core

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// DefaultRangeDays is how far back the default range starts.
const DefaultRangeDays = 7

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both bounds to their calendar day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// DefaultRange returns the week ending on the day of now.
func DefaultRange(now time.Time) DateRange {
	end := Day(now)
	return DateRange{Start: end.AddDate(0, 0, -DefaultRangeDays), End: end}
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty bounds fall back to
// DefaultRange(now).
func ParseDateRange(start, end string, now time.Time) (DateRange, error) {
	r := DefaultRange(now)
	if s := strings.TrimSpace(start); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return DateRange{}, err
		}
		r.Start = t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return DateRange{}, err
		}
		r.End = t
	}
	return r, nil
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Day drops the clock part of t, keeping its civil date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the civil date of t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// StartString and EndString format the bounds for queries and forms.
func (r DateRange) StartString() string { return r.Start.Format(DateLayout) }

func (r DateRange) EndString() string { return r.End.Format(DateLayout) }
