package aggregate

import (
	"sort"
	"time"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/dates"
	"github.com/mmynk/spendboard/internal/models"
)

// MonthRow is one calendar day of a month table.
type MonthRow struct {
	Day         int
	Date        time.Time
	Weekday     string
	PerCategory map[string]float64
	Total       float64
}

// MonthTable cross-tabulates one calendar month by day and category.
type MonthTable struct {
	MonthKey     string
	MonthLabel   string
	Categories   []string
	Rows         []MonthRow
	ColumnTotals map[string]float64
	GrandTotal   float64
}

// BuildMonthTable groups the expenses dated in the month named by monthKey
// (YYYY-MM; empty or malformed means the current month) by day and category.
// Only days with expenses get a row. Unknown categories fold into
// Miscellaneous.
func BuildMonthTable(expenses []models.Expense, eng config.Engine, monthKey, ownerID string) MonthTable {
	loc := eng.Loc()
	first, ok := dates.ParseMonthKey(monthKey, loc)
	if !ok {
		now := eng.Today()
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	}
	next := first.AddDate(0, 1, 0)

	byDay := make(map[int]sums)
	columns := sums{}
	grand := sums{}

	for _, e := range expenses {
		if !e.Dated() || !owned(e, ownerID) {
			continue
		}
		when := e.CreatedAt.In(loc)
		if when.Before(first) || !when.Before(next) {
			continue
		}
		cat := categoryOf(e, eng)
		day := when.Day()
		if byDay[day] == nil {
			byDay[day] = sums{}
		}
		byDay[day].add(cat, e.Amount)
		columns.add(cat, e.Amount)
		grand.add("", e.Amount)
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	table := MonthTable{
		MonthKey:     dates.MonthKey(first),
		MonthLabel:   first.Format("January 2006"),
		Categories:   append([]string(nil), eng.Categories...),
		Rows:         make([]MonthRow, 0, len(days)),
		ColumnTotals: columns.floats(eng.Categories),
		GrandTotal:   grand.float(""),
	}
	for _, d := range days {
		date := time.Date(first.Year(), first.Month(), d, 12, 0, 0, 0, loc)
		total := sums{}
		for _, v := range byDay[d] {
			total[""] = total[""].Add(v)
		}
		table.Rows = append(table.Rows, MonthRow{
			Day:         d,
			Date:        date,
			Weekday:     date.Weekday().String(),
			PerCategory: byDay[d].floats(eng.Categories),
			Total:       total.float(""),
		})
	}
	return table
}
