// Package dates coerces the date shapes found in stored records and CSV
// exports into one canonical time.Time.
//
// A canonical date lives in the engine's location. Values that carry no
// time of day land on local noon, so comparing them against a window
// boundary in another UTC offset cannot shift them onto the neighbouring day.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Timestamp is any backend timestamp that converts to a native time.
// *timestamppb.Timestamp satisfies it.
type Timestamp interface {
	AsTime() time.Time
}

// maxEpochMillis bounds epoch inputs to ±100,000,000 days around 1970.
const maxEpochMillis = 8.64e15

var (
	dayPattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	monthPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
)

// Normalize converts v to a canonical date in loc. It accepts backend
// timestamps, time.Time, epoch milliseconds (int, int64, float64),
// "YYYY-MM-DD" and "YYYY-MM" strings read as local calendar values, and any
// other string the general parser understands.
//
// The second result is false when v cannot be read as a date; callers must
// leave such records out of time-based aggregation.
func Normalize(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, ok := toTime(v, loc)
	if !ok {
		return time.Time{}, false
	}
	return noonIfMidnight(t.In(loc)), true
}

func toTime(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case *timestamppb.Timestamp:
		if x == nil || x.CheckValid() != nil {
			return time.Time{}, false
		}
		return x.AsTime(), true
	case Timestamp:
		t := x.AsTime()
		return t, !t.IsZero()
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return *x, true
	case int:
		return toTime(int64(x), loc)
	case int64:
		if x > maxEpochMillis || x < -maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(x)), true
	case string:
		return parseString(x, loc)
	default:
		return time.Time{}, false
	}
}

func parseString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if m := dayPattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[1], m[2], m[3], loc)
	}
	if m := monthPattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[1], m[2], "1", loc)
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// calendarDate builds a local date, rejecting out-of-range parts instead of
// letting time.Date roll them over.
func calendarDate(ys, ms, ds string, loc *time.Location) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if m < 1 || m > 12 || d < 1 || d > DaysIn(y, time.Month(m)) {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc), true
}

func noonIfMidnight(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
	}
	return t
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's local day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey reads a YYYY-MM key as the first day of that month in loc.
func ParseMonthKey(key string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	m := monthPattern.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return time.Time{}, false
	}
	return calendarDate(m[1], m[2], "1", loc)
}

// Format renders a canonical date for persistence.
func Format(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
