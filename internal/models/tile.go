package models

import (
	"errors"
	"fmt"
	"regexp"
)

// TileKind selects how a dashboard tile picks its aggregation window.
type TileKind string

const (
	TileRange TileKind = "range"
	TileMonth TileKind = "month"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// DashboardTile parameterizes the aggregator for one dashboard widget.
type DashboardTile struct {
	ID    string
	Label string
	Size  string
	Kind  TileKind

	// RangeKey is set for range tiles (7d, 1m, ... 1y).
	RangeKey string

	// MonthKey is set for month tiles (YYYY-MM).
	MonthKey string
}

// Validate checks that exactly one windowing mode is set and matches Kind.
func (t DashboardTile) Validate() error {
	switch t.Kind {
	case TileRange:
		if t.RangeKey == "" || t.MonthKey != "" {
			return fmt.Errorf("tile %s: range tiles need a range key and no month key", t.ID)
		}
	case TileMonth:
		if t.RangeKey != "" {
			return fmt.Errorf("tile %s: month tiles take no range key", t.ID)
		}
		if t.MonthKey != "" && !monthKeyPattern.MatchString(t.MonthKey) {
			return fmt.Errorf("tile %s: month key %q is not YYYY-MM", t.ID, t.MonthKey)
		}
	default:
		return errors.New("tile kind must be range or month")
	}
	return nil
}
