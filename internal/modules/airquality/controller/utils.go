package controller

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// dateRangeQuery is the optional start/end selection of a request.
type dateRangeQuery struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

// parseDateRangeQuery reads start and end as YYYY-MM-DD. Ordering is not
// checked here; pipeline.Filter reports a reversed range.
func parseDateRangeQuery(q url.Values) (dateRangeQuery, error) {
	var out dateRangeQuery
	var err error
	if out.Start, out.HasStart, err = parseDateParam(q, "start"); err != nil {
		return dateRangeQuery{}, err
	}
	if out.End, out.HasEnd, err = parseDateParam(q, "end"); err != nil {
		return dateRangeQuery{}, err
	}
	return out, nil
}

func parseDateParam(q url.Values, name string) (time.Time, bool, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid '%s' (expected YYYY-MM-DD)", name)
	}
	return t, true, nil
}

// resolve fills missing bounds with the dataset's first and last day.
func (q dateRangeQuery) resolve(first, last time.Time) (start, end time.Time) {
	start, end = first, last
	if q.HasStart {
		start = q.Start
	}
	if q.HasEnd {
		end = q.End
	}
	return start, end
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
