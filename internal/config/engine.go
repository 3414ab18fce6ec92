package config

import (
	"strings"
	"time"
)

// Miscellaneous is the fallback category for blank or unrecognized labels.
const Miscellaneous = "Miscellaneous"

// Mixed is returned by currency resolution when more than one code is present.
const Mixed = "MIXED"

// Engine holds the parameters the derived-data engine runs against.
// Nothing in the engine reads package-level state; every computation takes
// an Engine value, so tests can use arbitrary category and currency sets.
type Engine struct {
	// Categories is the ordered set of known expense categories.
	// The last entry is conventionally Miscellaneous.
	Categories []string

	// Currencies lists the codes offered for manual entry.
	Currencies []string

	// DefaultCurrency fills in records that carry no currency.
	DefaultCurrency string

	// Ranges maps a relative range key (7d, 1m, ...) to the number of days
	// the window reaches back from today, inclusive of today.
	Ranges map[string]int

	// Location is the local calendar used for date-only values.
	Location *time.Location

	// Now is the engine clock.
	Now func() time.Time
}

// DefaultRanges returns the built-in lookback windows.
func DefaultRanges() map[string]int {
	return map[string]int{
		"7d": 6,
		"1m": 29,
		"2m": 59,
		"3m": 89,
		"4m": 119,
		"5m": 149,
		"6m": 179,
		"1y": 364,
	}
}

// DefaultEngine returns the built-in engine configuration.
func DefaultEngine() Engine {
	return Engine{
		Categories: []string{
			"Food",
			"Groceries",
			"Transport",
			"Housing",
			"Utilities",
			"Entertainment",
			"Shopping",
			"Health",
			"Travel",
			"Education",
			Miscellaneous,
		},
		Currencies:      []string{"USD", "EUR", "GBP", "INR", "JPY", "CAD", "AUD", "CHF"},
		DefaultCurrency: "USD",
		Ranges:          DefaultRanges(),
		Location:        time.Local,
		Now:             time.Now,
	}
}

// Loc returns the configured location, defaulting to time.Local.
func (e Engine) Loc() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

// Today returns the current engine time in the configured location.
func (e Engine) Today() time.Time {
	if e.Now == nil {
		return time.Now().In(e.Loc())
	}
	return e.Now().In(e.Loc())
}

// Fallback returns DefaultCurrency, or USD when unset.
func (e Engine) Fallback() string {
	if e.DefaultCurrency == "" {
		return "USD"
	}
	return e.DefaultCurrency
}

// MatchCategory finds the known category equal to name, ignoring case and
// whitespace. It returns the canonical spelling.
func (e Engine) MatchCategory(name string) (string, bool) {
	key := FoldKey(name)
	if key == "" {
		return "", false
	}
	for _, c := range e.Categories {
		if FoldKey(c) == key {
			return c, true
		}
	}
	return "", false
}

// CategoryOrMisc returns the canonical category for name, folding anything
// unknown into Miscellaneous.
func (e Engine) CategoryOrMisc(name string) string {
	if c, ok := e.MatchCategory(name); ok {
		return c
	}
	return Miscellaneous
}

// FoldKey lowercases s and removes all whitespace.
func FoldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}
