package aggregate

import (
	"sort"
	"time"

	"github.com/mmynk/spendboard/internal/models"
)

// Activity is one entry of the history feed.
type Activity struct {
	Expense   models.Expense
	GroupName string
	When      time.Time
}

// ActivityFeed lists expenses most recently touched first. When is the
// later of UpdatedAt and CreatedAt. A limit of zero or less returns all.
func ActivityFeed(expenses []models.Expense, groups []models.Group, limit int) []Activity {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	feed := make([]Activity, 0, len(expenses))
	for _, e := range expenses {
		when := e.CreatedAt
		if e.UpdatedAt.After(when) {
			when = e.UpdatedAt
		}
		if when.IsZero() {
			continue
		}
		feed = append(feed, Activity{Expense: e, GroupName: names[e.GroupID], When: when})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].When.Equal(feed[j].When) {
			return feed[i].When.After(feed[j].When)
		}
		return feed[i].Expense.ID < feed[j].Expense.ID
	})

	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}
