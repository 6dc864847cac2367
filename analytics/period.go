package analytics

import (
	"errors"
	"fmt"
	"time"
)

// Period is a relative window bounding the analytics queries.
type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	PeriodAll    Period = "all"

	DefaultPeriod = Period7Days
)

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod validates a period query value. An empty value selects DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return DefaultPeriod, nil
	case Period7Days, Period30Days, Period90Days, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Days returns the length of the window in days, or 0 for PeriodAll.
func (p Period) Days() int {
	switch p {
	case Period7Days:
		return 7
	case Period30Days:
		return 30
	case Period90Days:
		return 90
	default:
		return 0
	}
}

// WindowStart returns the inclusive lower bound for the period relative to now.
// The zero time means the window is unbounded.
func (p Period) WindowStart(now time.Time) time.Time {
	days := p.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
