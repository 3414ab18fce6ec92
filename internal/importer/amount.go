package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount keeps only digits, dots and minus signs, then reads the rest
// as a decimal. Currency symbols, thousands separators and stray text drop
// out.
func parseAmount(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// isNumeric reports whether s reads as a plain number on its own, without
// any stripping.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}
