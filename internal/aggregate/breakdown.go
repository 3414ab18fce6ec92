package aggregate

import (
	"sort"
	"time"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/models"
)

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	Category string
	Amount   float64
	Share    float64 // fraction of the overall total, 0..1
}

// CategoryBreakdown totals expenses per category, largest first. Zero from
// or to leaves that side of the window open; undated expenses only count
// when both sides are open.
func CategoryBreakdown(expenses []models.Expense, eng config.Engine, ownerID string, from, to time.Time) []CategoryTotal {
	bounded := !from.IsZero() || !to.IsZero()
	totals := sums{}
	grand := sums{}

	for _, e := range expenses {
		if !owned(e, ownerID) {
			continue
		}
		if bounded {
			if !e.Dated() {
				continue
			}
			if !from.IsZero() && e.CreatedAt.Before(from) {
				continue
			}
			if !to.IsZero() && e.CreatedAt.After(to) {
				continue
			}
		}
		cat := categoryOf(e, eng)
		totals.add(cat, e.Amount)
		grand.add("", e.Amount)
	}

	rank := make(map[string]int, len(eng.Categories))
	for i, c := range eng.Categories {
		rank[c] = i
	}

	all := grand.float("")
	out := make([]CategoryTotal, 0, len(totals))
	for cat := range totals {
		amount := totals.float(cat)
		if amount == 0 {
			continue
		}
		ct := CategoryTotal{Category: cat, Amount: amount}
		if all != 0 {
			ct.Share = amount / all
		}
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return rank[out[i].Category] < rank[out[j].Category]
	})
	return out
}
