// Package clock supplies "now" to services so that the calendar day can be
// pinned, for example to the day the demo data was recorded.
package clock

import (
	"fmt"
	"time"

	"github.com/jwalitptl/hms-api/internal/model"
)

// Func returns the current time.
type Func func() time.Time

// System is the wall clock in UTC.
func System() time.Time {
	return time.Now().UTC()
}

// Pinned keeps the wall clock's time of day but reports it on day.
func Pinned(day time.Time, wall Func) Func {
	y, m, d := day.UTC().Date()
	return func() time.Time {
		now := wall().UTC()
		return time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	}
}

// Fixed always reports t.
func Fixed(t time.Time) Func {
	return func() time.Time { return t }
}

// FromConfig returns the system clock, or a pinned one when today is a
// YYYY-MM-DD date.
func FromConfig(today string) (Func, error) {
	if today == "" {
		return System, nil
	}
	day, err := model.ParseDay(today)
	if err != nil {
		return nil, fmt.Errorf("invalid clock.today %q: %w", today, err)
	}
	return Pinned(day, System), nil
}
