// Package currency picks a display currency for a set of expenses and
// renders amounts in it.
package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/models"
)

// Resolve returns the single currency code shared by expenses, or
// config.Mixed when more than one is present. Expenses without a code count
// as fallback. An empty set resolves to fallback.
func Resolve(expenses []models.Expense, fallback string) string {
	fallback = normalize(fallback)
	seen := ""
	for _, e := range expenses {
		code := normalize(e.Currency)
		if code == "" {
			code = fallback
		}
		switch {
		case seen == "":
			seen = code
		case seen != code:
			return config.Mixed
		}
	}
	if seen == "" {
		return fallback
	}
	return seen
}

var printer = message.NewPrinter(language.English)

// Format renders amount for display in code. Mixed totals are shown as a
// bare number marked "(mixed)"; codes outside ISO 4217 are appended as text.
func Format(amount float64, code string) string {
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	code = normalize(code)

	if code == config.Mixed {
		return printer.Sprintf("%.2f (mixed)", rounded)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%.2f %s", rounded, code)
	}
	return printer.Sprint(currency.Symbol(unit.Amount(rounded)))
}

// Totals sums expenses per currency code. Expenses without a code count as
// fallback.
func Totals(expenses []models.Expense, fallback string) map[string]float64 {
	fallback = normalize(fallback)
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		code := normalize(e.Currency)
		if code == "" {
			code = fallback
		}
		sums[code] = sums[code].Add(decimal.NewFromFloat(e.Amount))
	}
	out := make(map[string]float64, len(sums))
	for code, d := range sums {
		out[code] = d.Round(2).InexactFloat64()
	}
	return out
}

// FormatTotals renders per-currency totals in code order, joined by " + ".
func FormatTotals(totals map[string]float64) string {
	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = Format(totals[code], code)
	}
	return strings.Join(parts, " + ")
}

// Valid reports whether code is a known ISO 4217 currency.
func Valid(code string) bool {
	_, err := currency.ParseISO(normalize(code))
	return err == nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
