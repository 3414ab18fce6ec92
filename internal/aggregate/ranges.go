package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/dates"
	"github.com/mmynk/spendboard/internal/models"
)

// DefaultRange is used when a range key is not configured.
const DefaultRange = "1m"

// Granularity is the bucket size of a range series.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
)

// step is the seeding increment. Month buckets step a fixed 30 days, which
// can leave a short calendar month unseeded near month-length variation.
func (g Granularity) step() int {
	switch g {
	case Day:
		return 1
	case Week:
		return 7
	default:
		return 30
	}
}

// GranularityFor derives the bucket size from a window length: up to a week
// buckets by day, up to two months by week, anything longer by month.
func GranularityFor(lookbackDays int) Granularity {
	switch {
	case lookbackDays <= 6:
		return Day
	case lookbackDays <= 59:
		return Week
	default:
		return Month
	}
}

// Bucket is one time slice of a range series.
type Bucket struct {
	Key         string
	Label       string
	Start       time.Time
	Amount      float64
	PerCategory map[string]float64
}

// Window returns the lookback window for rangeKey, ending now. Unknown keys
// use DefaultRange.
func Window(rangeKey string, eng config.Engine) (start, end time.Time, g Granularity) {
	days, ok := eng.Ranges[rangeKey]
	if !ok {
		days = config.DefaultRanges()[DefaultRange]
	}
	end = eng.Today()
	start = dates.StartOfDay(end).AddDate(0, 0, -days)
	return start, end, GranularityFor(days)
}

func bucketOf(t time.Time, g Granularity) (key, label string, start time.Time) {
	switch g {
	case Day:
		start = dates.StartOfDay(t)
		return start.Format("2006-01-02"), start.Format("Jan 2"), start
	case Week:
		start = dates.StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
		return start.Format("2006-01-02"), start.Format("Jan 2"), start
	default:
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return dates.MonthKey(start), dates.MonthKey(start), start
	}
}

// RangeSeries buckets expenses dated inside the window named by rangeKey.
// Buckets are seeded across the window so empty periods appear with zero
// amounts. A non-empty ownerID keeps only expenses created by that user.
func RangeSeries(expenses []models.Expense, rangeKey, ownerID string, eng config.Engine) []Bucket {
	start, end, g := Window(rangeKey, eng)
	loc := eng.Loc()

	type acc struct {
		label string
		start time.Time
		total decimal.Decimal
		byCat sums
	}
	buckets := make(map[string]*acc)
	seed := func(t time.Time) *acc {
		key, label, bStart := bucketOf(t, g)
		b, ok := buckets[key]
		if !ok {
			b = &acc{label: label, start: bStart, byCat: sums{}}
			buckets[key] = b
		}
		return b
	}

	for t := start; !t.After(end); t = t.AddDate(0, 0, g.step()) {
		seed(t)
	}
	seed(end)

	for _, e := range expenses {
		if !e.Dated() || !owned(e, ownerID) {
			continue
		}
		when := e.CreatedAt.In(loc)
		if when.Before(start) || when.After(end) {
			continue
		}
		b := seed(when)
		b.total = b.total.Add(decimal.NewFromFloat(e.Amount))
		b.byCat.add(categoryOf(e, eng), e.Amount)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Bucket, len(keys))
	for i, k := range keys {
		b := buckets[k]
		out[i] = Bucket{
			Key:         k,
			Label:       b.label,
			Start:       b.start,
			Amount:      b.total.InexactFloat64(),
			PerCategory: b.byCat.floats(eng.Categories),
		}
	}
	return out
}
