// Package daterange parses the month-granular date range strings accepted by
// the auto-collect API: "YYYY-MM" for a single month or "YYYY-MM~YYYY-MM" for
// an inclusive range.
package daterange

import (
	"fmt"
	"strings"
	"time"

	"RegCollector/internal/domain"
)

const monthLayout = "2006-01"

// Range is an inclusive month range. Start and End are the first instants of
// their respective months.
type Range struct {
	Start time.Time
	End   time.Time
}

// Parse validates and parses a date range string. Malformed or inverted
// ranges are rejected with a *domain.ValidationError before any I/O runs.
func Parse(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, &domain.ValidationError{Msg: "date range is required"}
	}

	start, end := s, s
	if idx := strings.Index(s, "~"); idx >= 0 {
		start, end = s[:idx], s[idx+1:]
	}

	startMonth, err := parseMonth(start)
	if err != nil {
		return Range{}, err
	}
	endMonth, err := parseMonth(end)
	if err != nil {
		return Range{}, err
	}

	if endMonth.Before(startMonth) {
		return Range{}, &domain.ValidationError{
			Msg: fmt.Sprintf("invalid date range %q: start month is after end month", s),
		}
	}

	return Range{Start: startMonth, End: endMonth}, nil
}

func parseMonth(s string) (time.Time, error) {
	m, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &domain.ValidationError{
			Msg: fmt.Sprintf("invalid month %q: expected YYYY-MM", s),
		}
	}
	return m, nil
}

// Bounds returns the first instant of the start month and the first instant
// after the end month (half-open interval).
func (r Range) Bounds() (time.Time, time.Time) {
	return r.Start, r.End.AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	lo, hi := r.Bounds()
	return !t.Before(lo) && t.Before(hi)
}

// String renders the range back in wire format.
func (r Range) String() string {
	if r.Start.Equal(r.End) {
		return r.Start.Format(monthLayout)
	}
	return r.Start.Format(monthLayout) + "~" + r.End.Format(monthLayout)
}
