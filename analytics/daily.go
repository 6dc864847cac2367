package analytics

import "time"

// DayWindow is one calendar day expressed as an inclusive millisecond range.
type DayWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

// DailyWindows returns the given number of calendar days ending with the day
// containing now, oldest first. Days are cut at midnight in loc; each window
// runs from 00:00:00.000 to 23:59:59.999.
func DailyWindows(now time.Time, loc *time.Location, days int) []DayWindow {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	windows := make([]DayWindow, 0, days)
	for i := days - 1; i >= 0; i-- {
		start := time.Date(local.Year(), local.Month(), local.Day()-i, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
		windows = append(windows, DayWindow{
			Date:  start.Format(time.DateOnly),
			Start: start,
			End:   end,
		})
	}
	return windows
}
