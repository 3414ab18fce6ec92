package aggregate

import (
	"bytes"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/importer"
	"github.com/mmynk/spendboard/internal/models"
)

// now is Wednesday 20 March 2024, mid-afternoon.
var now = time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

func testEngine() config.Engine {
	eng := config.DefaultEngine()
	eng.Location = time.UTC
	eng.Now = func() time.Time { return now }
	return eng
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func labels(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Label
	}
	return out
}

func TestRangeSeries_Days(t *testing.T) {
	expenses := []models.Expense{
		{ID: "a", Amount: 10, Category: "Food", CreatedBy: "me", CreatedAt: at(time.March, 14, 12)},
		{ID: "b", Amount: 5, Category: "Yachts", CreatedBy: "me", CreatedAt: at(time.March, 20, 12)},
		{ID: "c", Amount: 99, Category: "Food", CreatedBy: "me", CreatedAt: at(time.March, 13, 12)},
		{ID: "d", Amount: 99, Category: "Food", CreatedBy: "me", CreatedAt: at(time.March, 20, 16)},
		{ID: "e", Amount: 99, Category: "Food", CreatedBy: "me"},
		{ID: "f", Amount: 7, Category: "Food", CreatedBy: "you", CreatedAt: at(time.March, 15, 12)},
	}

	got := RangeSeries(expenses, "7d", "me", testEngine())

	assert.Equal(t, []string{"Mar 14", "Mar 15", "Mar 16", "Mar 17", "Mar 18", "Mar 19", "Mar 20"}, labels(got))
	assert.Equal(t, 10.0, got[0].Amount)
	assert.Equal(t, 10.0, got[0].PerCategory["Food"])
	assert.Equal(t, 0.0, got[1].Amount, "other owners are filtered out")
	assert.Equal(t, 5.0, got[6].Amount)
	assert.Equal(t, 5.0, got[6].PerCategory[config.Miscellaneous])
	assert.Contains(t, got[3].PerCategory, "Groceries", "every category is seeded")

	everyone := RangeSeries(expenses, "7d", "", testEngine())
	assert.Equal(t, 7.0, everyone[1].Amount)
}

func TestRangeSeries_Weeks(t *testing.T) {
	got := RangeSeries(nil, "1m", "", testEngine())
	assert.Equal(t, []string{"Feb 18", "Feb 25", "Mar 3", "Mar 10", "Mar 17"}, labels(got))
	for _, b := range got {
		assert.Equal(t, time.Sunday, b.Start.Weekday())
		assert.Zero(t, b.Amount)
	}
}

func TestRangeSeries_Months(t *testing.T) {
	got := RangeSeries(nil, "3m", "", testEngine())
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02", "2024-03"}, labels(got))
}

func TestRangeSeries_UnknownKeyUsesDefault(t *testing.T) {
	assert.Equal(t, labels(RangeSeries(nil, "1m", "", testEngine())), labels(RangeSeries(nil, "nope", "", testEngine())))
}

func TestRangeSeries_CoversWindowAndConservesTotals(t *testing.T) {
	eng := testEngine()
	rng := rand.New(rand.NewSource(7))

	var expenses []models.Expense
	for i := 0; i < 400; i++ {
		offset := time.Duration(rng.Intn(400*24)) * time.Hour
		expenses = append(expenses, models.Expense{
			Amount:    math.Round(rng.Float64()*20000) / 100,
			Category:  eng.Categories[rng.Intn(len(eng.Categories))],
			CreatedAt: now.Add(-offset + 5*24*time.Hour),
		})
	}

	for key := range eng.Ranges {
		t.Run(key, func(t *testing.T) {
			start, end, g := Window(key, eng)
			got := RangeSeries(expenses, key, "", eng)
			require.NotEmpty(t, got)

			var want, have float64
			for _, e := range expenses {
				if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
					want += e.Amount
				}
			}
			for _, b := range got {
				have += b.Amount
			}
			assert.InDelta(t, want, have, 1e-6)

			first, _, _ := bucketOf(start, g)
			last, _, _ := bucketOf(end, g)
			assert.Equal(t, first, got[0].Key)
			assert.Equal(t, last, got[len(got)-1].Key)

			for i := 1; i < len(got); i++ {
				prev, cur := got[i-1].Start, got[i].Start
				switch g {
				case Day:
					assert.Equal(t, prev.AddDate(0, 0, 1), cur, "gap after %s", got[i-1].Key)
				case Week:
					assert.Equal(t, prev.AddDate(0, 0, 7), cur, "gap after %s", got[i-1].Key)
				case Month:
					assert.Equal(t, prev.AddDate(0, 1, 0), cur, "gap after %s", got[i-1].Key)
				}
			}
		})
	}
}

func TestGranularityFor(t *testing.T) {
	assert.Equal(t, Day, GranularityFor(6))
	assert.Equal(t, Week, GranularityFor(29))
	assert.Equal(t, Week, GranularityFor(59))
	assert.Equal(t, Month, GranularityFor(89))
	assert.Equal(t, Month, GranularityFor(364))
}

func monthFixture() []models.Expense {
	return []models.Expense{
		{ID: "1", Amount: 12.50, Category: "Food", CreatedBy: "me", CreatedAt: at(time.March, 1, 12)},
		{ID: "2", Amount: 3.10, Category: "groceries", CreatedBy: "me", CreatedAt: at(time.March, 1, 18)},
		{ID: "3", Amount: 7, Category: "Yachts", CreatedBy: "me", CreatedAt: at(time.March, 5, 12)},
		{ID: "4", Amount: 50, Category: "Food", CreatedBy: "me", CreatedAt: at(time.April, 1, 12)},
		{ID: "5", Amount: 50, Category: "Food", CreatedBy: "me", CreatedAt: at(time.February, 29, 12)},
		{ID: "6", Amount: 50, Category: "Food", CreatedBy: "you", CreatedAt: at(time.March, 2, 12)},
	}
}

func TestBuildMonthTable(t *testing.T) {
	table := BuildMonthTable(monthFixture(), testEngine(), "2024-03", "me")

	assert.Equal(t, "2024-03", table.MonthKey)
	assert.Equal(t, "March 2024", table.MonthLabel)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 1, table.Rows[0].Day)
	assert.Equal(t, "Friday", table.Rows[0].Weekday)
	assert.InDelta(t, 15.60, table.Rows[0].Total, 1e-9)
	assert.Equal(t, 3.10, table.Rows[0].PerCategory["Groceries"])

	assert.Equal(t, 5, table.Rows[1].Day)
	assert.Equal(t, 7.0, table.Rows[1].PerCategory[config.Miscellaneous])

	assert.Equal(t, 12.50, table.ColumnTotals["Food"])
	assert.Equal(t, 0.0, table.ColumnTotals["Travel"])
	assert.InDelta(t, 22.60, table.GrandTotal, 1e-9)
}

func TestBuildMonthTable_DefaultsToCurrentMonth(t *testing.T) {
	table := BuildMonthTable(monthFixture(), testEngine(), "", "")
	assert.Equal(t, "2024-03", table.MonthKey)
	assert.Len(t, table.Rows, 3)

	bad := BuildMonthTable(nil, testEngine(), "March", "")
	assert.Equal(t, "2024-03", bad.MonthKey)
	assert.Empty(t, bad.Rows)
}

func TestWriteMonthCSV(t *testing.T) {
	eng := testEngine()
	eng.Categories = []string{"Food", "Groceries", config.Miscellaneous}
	table := BuildMonthTable(monthFixture(), eng, "2024-03", "me")

	var buf bytes.Buffer
	require.NoError(t, WriteMonthCSV(&buf, table))

	want := `"Month","Date","Food","Groceries","Miscellaneous","Total Spend"
"March 2024","1 - Friday","12.50","3.10","","15.60"
"March 2024","5 - Tuesday","","","7.00","7.00"
"Total","","12.50","3.10","7.00","22.60"
`
	assert.Equal(t, want, buf.String())
}

func TestWriteMonthCSV_ReimportsAsPivot(t *testing.T) {
	eng := testEngine()
	table := BuildMonthTable(monthFixture(), eng, "2024-03", "me")

	var buf bytes.Buffer
	require.NoError(t, WriteMonthCSV(&buf, table))

	res, err := importer.New(eng).Parse(buf.String(), nil, "me")
	require.NoError(t, err)
	assert.Equal(t, importer.Pivot, res.Schema.Kind)
	require.Len(t, res.Expenses, 3)

	again := BuildMonthTable(res.Expenses, eng, "2024-03", "me")
	assert.InDelta(t, table.GrandTotal, again.GrandTotal, 1e-9)
	for _, c := range eng.Categories {
		assert.InDelta(t, table.ColumnTotals[c], again.ColumnTotals[c], 1e-9, c)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	eng := testEngine()
	expenses := []models.Expense{
		{Amount: 10, Category: "Food", CreatedAt: at(time.March, 1, 12)},
		{Amount: 30, Category: "Groceries", CreatedAt: at(time.March, 2, 12)},
		{Amount: 10, Category: "Yachts", CreatedAt: at(time.March, 3, 12)},
		{Amount: 40, Category: "Travel"},
	}

	all := CategoryBreakdown(expenses, eng, "", time.Time{}, time.Time{})
	require.Len(t, all, 4)
	assert.Equal(t, "Travel", all[0].Category)
	assert.InDelta(t, 40.0/90.0, all[0].Share, 1e-9)

	march := CategoryBreakdown(expenses, eng, "", at(time.March, 1, 0), at(time.March, 31, 23))
	require.Len(t, march, 3)
	assert.Equal(t, []string{"Groceries", "Food", config.Miscellaneous},
		[]string{march[0].Category, march[1].Category, march[2].Category})
	assert.InDelta(t, 0.6, march[0].Share, 1e-9)
}

func TestActivityFeed(t *testing.T) {
	groups := []models.Group{{ID: "g1", Name: "Lisbon"}}
	expenses := []models.Expense{
		{ID: "old", CreatedAt: at(time.March, 1, 12)},
		{ID: "edited", GroupID: "g1", CreatedAt: at(time.February, 1, 12), UpdatedAt: at(time.March, 10, 12)},
		{ID: "new", CreatedAt: at(time.March, 5, 12)},
		{ID: "undated"},
	}

	feed := ActivityFeed(expenses, groups, 0)
	require.Len(t, feed, 3)
	assert.Equal(t, "edited", feed[0].Expense.ID)
	assert.Equal(t, "Lisbon", feed[0].GroupName)
	assert.Equal(t, "new", feed[1].Expense.ID)
	assert.Equal(t, "old", feed[2].Expense.ID)

	assert.Len(t, ActivityFeed(expenses, groups, 2), 2)
}
