package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/dates"
	"github.com/mmynk/spendboard/internal/models"
)

// flatColumns holds the resolved column index per role; -1 when absent.
type flatColumns struct {
	amount, category, currency, date, group, payer, note int
}

func resolveFlatColumns(header []string) flatColumns {
	return flatColumns{
		amount:   findColumn(header, amountAliases),
		category: findColumn(header, categoryAliases),
		currency: findColumn(header, currencyAliases),
		date:     findColumn(header, dateAliases),
		group:    findColumn(header, groupAliases),
		payer:    findColumn(header, payerAliases),
		note:     findColumn(header, noteAliases),
	}
}

// batch carries the per-import context shared by both layouts.
type batch struct {
	eng    config.Engine
	groups []models.Group
	owner  string
	stamp  int64
	nonce  string
	now    time.Time
}

// parseFlat converts one-row-per-transaction sheets. Rows with an amount
// that does not parse, or parses negative, are dropped; zero amounts stay.
func parseFlat(rows [][]string, headerRow int, b batch) ([]models.Expense, int) {
	cols := resolveFlatColumns(rows[headerRow])

	var (
		out     []models.Expense
		dropped int
	)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]

		amount, ok := parseAmount(cell(row, cols.amount))
		if !ok || amount < 0 {
			dropped++
			continue
		}

		created, ok := dates.Normalize(cell(row, cols.date), b.eng.Loc())
		if !ok {
			created = b.now
		}

		group := findGroup(b.groups, cell(row, cols.group))

		currency := strings.ToUpper(cell(row, cols.currency))
		if currency == "" && group != nil {
			currency = group.Currency
		}
		if currency == "" {
			currency = b.eng.Fallback()
		}

		category := cell(row, cols.category)
		if category == "" {
			category = config.Miscellaneous
		} else if known, ok := b.eng.MatchCategory(category); ok {
			category = known
		}

		exp := models.Expense{
			ID:        fmt.Sprintf("imp-%d-%s-%d", b.stamp, b.nonce, i),
			Amount:    amount,
			Category:  category,
			Currency:  currency,
			CreatedBy: b.owner,
			SplitType: models.SplitEqual,
			Note:      cell(row, cols.note),
			CreatedAt: created,
			UpdatedAt: created,
		}
		if group != nil {
			exp.GroupID = group.ID
		}
		exp.PaidByUID, exp.PaidByName = resolvePayer(group, cell(row, cols.payer))

		out = append(out, exp)
	}
	return out, dropped
}

// findGroup matches a group by exact name, ignoring case.
func findGroup(groups []models.Group, name string) *models.Group {
	if name == "" {
		return nil
	}
	for i := range groups {
		if strings.EqualFold(strings.TrimSpace(groups[i].Name), name) {
			return &groups[i]
		}
	}
	return nil
}

// resolvePayer maps a payer cell to a member UID when the group knows the
// name or UID; otherwise the text is kept as a display name only.
func resolvePayer(group *models.Group, payer string) (uid, name string) {
	if payer == "" {
		return "", ""
	}
	if group != nil {
		for _, m := range group.Members {
			if m.UID != "" && (strings.EqualFold(m.Name, payer) || m.UID == payer) {
				return m.UID, m.Name
			}
		}
	}
	return "", payer
}
