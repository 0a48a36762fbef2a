package core

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the zone timestamps are recorded in.
const DefaultTimezone = "Asia/Kolkata"

// TimestampLayout is how timestamps are stored: civil time, no offset.
const TimestampLayout = "2006-01-02 15:04:05"

// Clock returns the current civil time.
type Clock interface {
	Now() time.Time
}

// ZoneClock reads the wall clock in a fixed zone and drops the offset,
// so the returned time carries the zone's civil fields in UTC.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock loads the named IANA zone.
func NewZoneClock(name string) (*ZoneClock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &ZoneClock{loc: loc}, nil
}

func (c *ZoneClock) Now() time.Time {
	return Civil(time.Now(), c.loc)
}

// Civil converts t to loc and returns the same wall-clock reading in UTC,
// truncated to whole seconds.
func Civil(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), 0, time.UTC)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
