// Package timeutil turns raw date/time strings into canonical instants in the
// platform's operating timezone. It is pure: no I/O, no reliance on
// server-local time.
package timeutil

import (
	"fmt"
	"time"

	"github.com/docease/docease-api/internal/domain/schedule"
)

// Instant is a parsed, timezone-resolved point in time together with its
// weekday, hour and minute in the operating timezone.
type Instant struct {
	At      time.Time
	Weekday schedule.Weekday
	Hour    int
	Minute  int
}

type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	return &Normalizer{loc: loc}
}

// Layouts without a zone offset are interpreted in the operating timezone;
// RFC3339 inputs carry their own offset and are converted into it.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// NormalizeDateTime parses a combined date-time string, e.g.
// "2026-03-02T09:00" or an RFC3339 timestamp.
func (n *Normalizer) NormalizeDateTime(raw string) (Instant, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return n.instant(t.In(n.loc)), nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return n.instant(t), nil
		}
	}
	return Instant{}, fmt.Errorf("%w: %q", schedule.ErrInvalidTimeFormat, raw)
}

// NormalizeDateAndTime combines a calendar date ("2006-01-02") with a
// wall-clock time ("HH:MM").
func (n *Normalizer) NormalizeDateAndTime(date, clock string) (Instant, error) {
	day, err := time.ParseInLocation("2006-01-02", date, n.loc)
	if err != nil {
		return Instant{}, fmt.Errorf("%w: %q", schedule.ErrInvalidTimeFormat, date)
	}
	hm, err := schedule.ParseHourMinute(clock)
	if err != nil {
		return Instant{}, err
	}
	combined := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour, hm.Minute, 0, 0, n.loc)
	return n.instant(combined), nil
}

func (n *Normalizer) instant(t time.Time) Instant {
	return Instant{
		At:      t,
		Weekday: schedule.WeekdayOf(t),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
	}
}
