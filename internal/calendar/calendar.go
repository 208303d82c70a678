// Package calendar resolves trading days. Only weekends are skipped; market
// holidays are not modelled.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DateLayout is the provider date format used for cache keys and series keys.
const DateLayout = "2006-01-02"

// MostRecentTradingDay returns ref's calendar date, stepped back over Saturday
// and Sunday. The result is midnight in ref's location.
func MostRecentTradingDay(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// Format renders a date the way the providers key their series.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Parse reads a "YYYY-MM-DD" key as midnight UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Calendar pins the timezone policy and the clock used to decide "today".
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

// New creates a Calendar for the named IANA zone. An empty name means UTC.
func New(zone string) (*Calendar, error) {
	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", zone, err)
		}
		loc = l
	}
	return &Calendar{Location: loc, Now: time.Now}, nil
}

// Today returns the current calendar date in the calendar's location.
func (c *Calendar) Today() time.Time {
	now := c.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// MostRecent returns the most recent trading day as of now.
func (c *Calendar) MostRecent() time.Time {
	return MostRecentTradingDay(c.now())
}

func (c *Calendar) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}
