// Package pipeline turns hourly station readings into the aggregate, long-form
// and category tables shown on the dashboard. Every function is pure: inputs
// are never modified and outputs are freshly allocated.
package pipeline

import (
	"fmt"
	"time"

	"airquality-server/internal/modules/airquality/types"
)

// RangeError is returned when a date range starts after it ends.
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly))
}

// Filter returns the readings whose calendar date lies in [start, end].
// Only the calendar day of start and end is considered.
func Filter(readings []types.Reading, start, end time.Time) ([]types.Reading, error) {
	from, to := truncateDay(start), truncateDay(end)
	if from.After(to) {
		return nil, &RangeError{Start: from, End: to}
	}
	out := make([]types.Reading, 0, len(readings))
	for _, r := range readings {
		d := truncateDay(r.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Bounds returns the earliest and latest calendar dates present in readings.
func Bounds(readings []types.Reading) (first, last time.Time, ok bool) {
	for i, r := range readings {
		d := truncateDay(r.Date)
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last, len(readings) > 0
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
