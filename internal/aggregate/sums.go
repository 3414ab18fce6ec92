// Package aggregate buckets expenses for charts and tables: relative range
// series, calendar month tables, category breakdowns and the activity feed.
//
// Every function allocates its own accumulators and returns finished values;
// nothing is cached between calls.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/models"
)

// sums is a keyed decimal accumulator. Amounts are added as decimals so that
// totals of two-place values do not drift.
type sums map[string]decimal.Decimal

func (s sums) add(key string, amount float64) {
	s[key] = s[key].Add(decimal.NewFromFloat(amount))
}

func (s sums) float(key string) float64 {
	return s[key].InexactFloat64()
}

// floats finalizes the accumulator, seeding every category with zero.
func (s sums) floats(categories []string) map[string]float64 {
	out := make(map[string]float64, len(categories))
	for _, c := range categories {
		out[c] = 0
	}
	for k, v := range s {
		out[k] = v.InexactFloat64()
	}
	return out
}

// owned reports whether e passes the owner filter. An empty filter admits
// everyone's expenses.
func owned(e models.Expense, ownerID string) bool {
	return ownerID == "" || e.CreatedBy == ownerID
}

func categoryOf(e models.Expense, eng config.Engine) string {
	return eng.CategoryOrMisc(e.Category)
}
