package models

import (
	"testing"
	"time"
)

func TestDashboardTileValidate(t *testing.T) {
	tests := []struct {
		name    string
		tile    DashboardTile
		wantErr bool
	}{
		{name: "range tile", tile: DashboardTile{ID: "a", Kind: TileRange, RangeKey: "1m"}},
		{name: "month tile", tile: DashboardTile{ID: "b", Kind: TileMonth, MonthKey: "2024-03"}},
		{name: "month tile defaults to current month", tile: DashboardTile{ID: "c", Kind: TileMonth}},
		{name: "range tile with month key", tile: DashboardTile{ID: "d", Kind: TileRange, RangeKey: "7d", MonthKey: "2024-03"}, wantErr: true},
		{name: "range tile without key", tile: DashboardTile{ID: "e", Kind: TileRange}, wantErr: true},
		{name: "month tile with range key", tile: DashboardTile{ID: "f", Kind: TileMonth, RangeKey: "7d"}, wantErr: true},
		{name: "bad month key", tile: DashboardTile{ID: "g", Kind: TileMonth, MonthKey: "2024-13"}, wantErr: true},
		{name: "unknown kind", tile: DashboardTile{ID: "h"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpensePayer(t *testing.T) {
	e := Expense{CreatedBy: "owner"}
	if got := e.Payer(); got != "owner" {
		t.Errorf("Payer() = %q, want owner", got)
	}
	e.PaidByUID = "alice"
	if got := e.Payer(); got != "alice" {
		t.Errorf("Payer() = %q, want alice", got)
	}
}

func TestExpenseUpdateApply(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	amount := 10.0
	split := SplitWeighted
	orig := Expense{ID: "x", Amount: 5, Category: "Food", Currency: "EUR"}

	got := ExpenseUpdate{Amount: &amount, SplitType: &split}.Apply(orig, now)

	if got.Amount != 10 || got.SplitType != SplitWeighted {
		t.Errorf("Apply() = %+v", got)
	}
	if got.Category != "Food" || got.Currency != "EUR" {
		t.Errorf("Apply() changed untouched fields: %+v", got)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
	if orig.Amount != 5 {
		t.Error("Apply() mutated the original")
	}
}

func TestParseSplitType(t *testing.T) {
	if ParseSplitType("weighted") != SplitWeighted || ParseSplitType("") != SplitEqual || ParseSplitType("bogus") != SplitEqual {
		t.Error("ParseSplitType mapping wrong")
	}
}
