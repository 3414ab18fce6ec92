package service

import (
	"errors"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mmynk/spendboard/internal/aggregate"
	"github.com/mmynk/spendboard/internal/calculator"
	"github.com/mmynk/spendboard/internal/currency"
	"github.com/mmynk/spendboard/internal/importer"
	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/storage"
)

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, importer.ErrNoValidRows), errors.Is(err, importer.ErrSpreadsheetBinary):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalid(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}

func toTimestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func toExpense(e models.Expense) Expense {
	return Expense{
		ID:           e.ID,
		Amount:       e.Amount,
		Display:      currency.Format(e.Amount, e.Currency),
		Category:     e.Category,
		Currency:     e.Currency,
		GroupID:      e.GroupID,
		PaidByUID:    e.PaidByUID,
		PaidByName:   e.PaidByName,
		CreatedBy:    e.CreatedBy,
		SplitType:    string(e.SplitType),
		Note:         e.Note,
		ImportFileID: e.ImportFileID,
		CreatedAt:    toTimestamp(e.CreatedAt),
		UpdatedAt:    toTimestamp(e.UpdatedAt),
	}
}

func toExpenses(expenses []models.Expense) []Expense {
	out := make([]Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toExpense(e)
	}
	return out
}

func toGroup(g models.Group) Group {
	members := make([]Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = Member{UID: m.UID, Name: m.Name, Email: m.Email}
	}
	return Group{
		ID:            g.ID,
		Name:          g.Name,
		Type:          string(g.Type),
		Currency:      g.Currency,
		Members:       members,
		MembersCount:  g.MembersCount,
		MembersTarget: g.MembersTarget,
		CreatedAt:     toTimestamp(g.CreatedAt),
	}
}

func toImportFile(f models.CSVImportFile) ImportFile {
	return ImportFile{
		ID:         f.ID,
		Name:       f.Name,
		RowCount:   f.RowCount,
		Currency:   f.Currency,
		ImportedAt: toTimestamp(f.ImportedAt),
	}
}

func toBalances(balances []calculator.MemberBalance) []Balance {
	out := make([]Balance, len(balances))
	for i, b := range balances {
		out[i] = Balance{
			MemberID:  b.MemberID,
			Name:      b.Name,
			Net:       b.Net,
			TotalPaid: b.TotalPaid,
			TotalOwed: b.TotalOwed,
		}
	}
	return out
}

func toSettlements(edges []calculator.DebtEdge) []Settlement {
	out := make([]Settlement, len(edges))
	for i, e := range edges {
		out[i] = Settlement{From: e.From, To: e.To, Amount: e.Amount}
	}
	return out
}

func toBuckets(buckets []aggregate.Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	for i, b := range buckets {
		out[i] = Bucket{Key: b.Key, Label: b.Label, Amount: b.Amount, PerCategory: b.PerCategory}
	}
	return out
}

func toTile(t models.DashboardTile) Tile {
	return Tile{
		ID:       t.ID,
		Label:    t.Label,
		Size:     t.Size,
		Kind:     string(t.Kind),
		RangeKey: t.RangeKey,
		MonthKey: t.MonthKey,
	}
}

func fromTile(t Tile) models.DashboardTile {
	return models.DashboardTile{
		ID:       t.ID,
		Label:    t.Label,
		Size:     t.Size,
		Kind:     models.TileKind(t.Kind),
		RangeKey: t.RangeKey,
		MonthKey: t.MonthKey,
	}
}
