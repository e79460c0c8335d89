package month

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month independent of day and time.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Of returns the calendar month t falls in, in t's own location.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String formats as "2023-09".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// TruncateDay returns t's calendar day, read in t's own location, as
// midnight UTC. Dates from different zones compare as civil days.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddClamped adds n calendar months to t. The day of month is kept when the
// target month has it and clamped to the target's last day otherwise, so
// Jan 31 + 1 month is Feb 28 (or 29).
func AddClamped(t time.Time, n int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 + n
	year, mon := total/12, time.Month(total%12+1)

	day := t.Day()
	if last := daysIn(year, mon, t.Location()); day > last {
		day = last
	}
	return time.Date(year, mon, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// WholeBetween returns the number of whole months from start to end: the
// largest n with AddClamped(start, n) <= end. It is negative when end is
// before start.
func WholeBetween(start, end time.Time) int {
	n := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	for AddClamped(start, n).After(end) {
		n--
	}
	return n
}

func daysIn(year int, mon time.Month, loc *time.Location) int {
	return time.Date(year, mon+1, 0, 0, 0, 0, 0, loc).Day()
}
