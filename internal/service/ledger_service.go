package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/spendboard/internal/aggregate"
	"github.com/mmynk/spendboard/internal/calculator"
	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/currency"
	"github.com/mmynk/spendboard/internal/dates"
	"github.com/mmynk/spendboard/internal/importer"
	"github.com/mmynk/spendboard/internal/middleware"
	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/storage"
)

// LedgerService implements the Connect LedgerService: imports, expense
// records and every derived view over them. Each call reloads the stored
// snapshot and recomputes from scratch.
type LedgerService struct {
	store    storage.Store
	engine   config.Engine
	importer *importer.Importer
}

// NewLedgerService creates a LedgerService over the given storage backend.
func NewLedgerService(store storage.Store, eng config.Engine) *LedgerService {
	return &LedgerService{store: store, engine: eng, importer: importer.New(eng)}
}

// ownerFilter returns the CreatedBy filter for a "mine" request.
func ownerFilter(ctx context.Context, mine bool) (string, error) {
	if !mine {
		return "", nil
	}
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required to filter your own expenses"))
	}
	return userID, nil
}

// snapshot loads every group and the expenses passing filter.
func (s *LedgerService) snapshot(ctx context.Context, filter storage.ExpenseFilter) ([]models.Group, []models.Expense, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return groups, expenses, nil
}

// ImportCSV parses an uploaded CSV, remembers the file and stores its
// records. Re-importing the same text adds a second copy.
func (s *LedgerService) ImportCSV(ctx context.Context, req *connect.Request[ImportCSVRequest]) (*connect.Response[ImportCSVResponse], error) {
	userID := middleware.GetUserID(ctx)
	slog.Info("ImportCSV request received",
		"name", req.Msg.Name,
		"bytes", len(req.Msg.Text),
		"user_id", userID,
	)

	code := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if code != "" && !currency.Valid(code) {
		return nil, invalid(fmt.Sprintf("unknown currency %q", req.Msg.Currency))
	}

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ImportCSV failed to load groups", "error", err)
		return nil, toConnectError(err)
	}

	file, res, err := s.importer.Import(req.Msg.Name, req.Msg.Text, groups, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	expenses := res.Expenses
	if code != "" {
		file.Currency = code
		expenses = importer.WithCurrency(expenses, code, s.engine.Today())
	}

	if err := s.store.SaveImport(ctx, &file, expenses); err != nil {
		slog.Error("ImportCSV failed to save import", "file_id", file.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&ImportCSVResponse{
		File:     toImportFile(file),
		Schema:   res.Schema.Kind.String(),
		Imported: len(expenses),
	}), nil
}

// AddExpense records one expense for the caller.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	in := req.Msg.Expense
	slog.Info("AddExpense request received", "amount", in.Amount, "category", in.Category, "group_id", in.GroupID)

	if in.Amount <= 0 {
		return nil, invalid("amount must be positive")
	}

	fallback := s.engine.Fallback()
	if in.GroupID != "" {
		group, err := s.store.GetGroup(ctx, in.GroupID)
		if err != nil {
			return nil, toConnectError(err)
		}
		if group.Currency != "" {
			fallback = group.Currency
		}
	}

	code := strings.ToUpper(strings.TrimSpace(in.Currency))
	if code == "" {
		code = fallback
	}
	if !currency.Valid(code) {
		return nil, invalid(fmt.Sprintf("unknown currency %q", in.Currency))
	}

	now := s.engine.Today()
	when := now
	if in.CreatedAt != nil {
		t, ok := dates.Normalize(in.CreatedAt, s.engine.Loc())
		if !ok {
			return nil, invalid("createdAt is not a valid timestamp")
		}
		when = t
	}

	userID := middleware.GetUserID(ctx)
	payerUID, payerName := in.PaidByUID, in.PaidByName
	if payerUID == "" && payerName == "" && userID != "" {
		payerUID, payerName = userID, middleware.GetName(ctx)
	}

	expense := models.Expense{
		Amount:     in.Amount,
		Category:   s.engine.CategoryOrMisc(in.Category),
		Currency:   code,
		GroupID:    in.GroupID,
		PaidByUID:  payerUID,
		PaidByName: payerName,
		CreatedBy:  userID,
		SplitType:  models.ParseSplitType(in.SplitType),
		Note:       in.Note,
		CreatedAt:  when,
		UpdatedAt:  now,
	}
	saved := []models.Expense{expense}
	if err := s.store.SaveExpenses(ctx, saved); err != nil {
		slog.Error("AddExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense added", "expense_id", saved[0].ID)
	return connect.NewResponse(&AddExpenseResponse{Expense: toExpense(saved[0])}), nil
}

// UpdateExpense edits the set fields of an existing expense.
func (s *LedgerService) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	msg := req.Msg
	slog.Info("UpdateExpense request received", "expense_id", msg.ID)

	existing, err := s.store.GetExpense(ctx, msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	update := models.ExpenseUpdate{
		Amount:     msg.Amount,
		PaidByUID:  msg.PaidByUID,
		PaidByName: msg.PaidByName,
	}
	if msg.Amount != nil && *msg.Amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	if msg.Category != nil {
		category := s.engine.CategoryOrMisc(*msg.Category)
		update.Category = &category
	}
	if msg.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*msg.Currency))
		if !currency.Valid(code) {
			return nil, invalid(fmt.Sprintf("unknown currency %q", *msg.Currency))
		}
		update.Currency = &code
	}
	if msg.SplitType != nil {
		st := models.ParseSplitType(*msg.SplitType)
		update.SplitType = &st
	}
	if msg.CreatedAt != nil {
		t, ok := dates.Normalize(msg.CreatedAt, s.engine.Loc())
		if !ok {
			return nil, invalid("createdAt is not a valid timestamp")
		}
		update.CreatedAt = &t
	}

	updated := []models.Expense{update.Apply(*existing, s.engine.Today())}
	if err := s.store.SaveExpenses(ctx, updated); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", msg.ID)
	return connect.NewResponse(&UpdateExpenseResponse{Expense: toExpense(updated[0])}), nil
}

// ListExpenses returns stored expenses, optionally limited to a group or to
// the caller's own records.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	owner, err := ownerFilter(ctx, req.Msg.Mine)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: req.Msg.GroupID, CreatedBy: owner})
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListExpenses successful", "count", len(expenses))
	return connect.NewResponse(&ListExpensesResponse{
		Expenses: toExpenses(expenses),
		Currency: currency.Resolve(expenses, s.engine.Fallback()),
	}), nil
}

// DeleteExpense removes an expense by ID.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ID)

	if err := s.store.DeleteExpense(ctx, req.Msg.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ID)
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// GroupBalances computes equal-split net balances for one group along with
// the transfers that would settle them.
func (s *LedgerService) GroupBalances(ctx context.Context, req *connect.Request[GroupBalancesRequest]) (*connect.Response[GroupBalancesResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GroupBalances request received", "group_id", groupID)

	if groupID == "" {
		return nil, invalid("groupId required")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GroupBalances failed - group not found", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: groupID})
	if err != nil {
		slog.Error("GroupBalances failed - could not list expenses", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balances := calculator.GroupBalances(*group, expenses)
	fallback := group.Currency
	if fallback == "" {
		fallback = s.engine.Fallback()
	}

	slog.Info("GroupBalances successful", "group_id", groupID, "members", len(balances), "expenses", len(expenses))
	return connect.NewResponse(&GroupBalancesResponse{
		Balances:    toBalances(balances),
		Settlements: toSettlements(calculator.SuggestSettlements(balances)),
		Currency:    currency.Resolve(expenses, fallback),
	}), nil
}

// OverallBalances sums every member's net across all groups.
func (s *LedgerService) OverallBalances(ctx context.Context, req *connect.Request[OverallBalancesRequest]) (*connect.Response[OverallBalancesResponse], error) {
	groups, expenses, err := s.snapshot(ctx, storage.ExpenseFilter{})
	if err != nil {
		slog.Error("OverallBalances failed", "error", err)
		return nil, toConnectError(err)
	}

	var grouped []models.Expense
	for _, e := range expenses {
		if e.GroupID != "" {
			grouped = append(grouped, e)
		}
	}

	return connect.NewResponse(&OverallBalancesResponse{
		Balances: toBalances(calculator.OverallBalances(groups, grouped)),
		Currency: currency.Resolve(grouped, s.engine.Fallback()),
	}), nil
}

// RangeSeries buckets spending over a relative window.
func (s *LedgerService) RangeSeries(ctx context.Context, req *connect.Request[RangeSeriesRequest]) (*connect.Response[RangeSeriesResponse], error) {
	owner, err := ownerFilter(ctx, req.Msg.Mine)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{CreatedBy: owner})
	if err != nil {
		return nil, toConnectError(err)
	}

	buckets := aggregate.RangeSeries(expenses, req.Msg.RangeKey, owner, s.engine)
	return connect.NewResponse(&RangeSeriesResponse{
		Buckets:  toBuckets(buckets),
		Currency: currency.Resolve(expenses, s.engine.Fallback()),
	}), nil
}

// MonthTable cross-tabulates one calendar month by day and category.
func (s *LedgerService) MonthTable(ctx context.Context, req *connect.Request[MonthTableRequest]) (*connect.Response[MonthTableResponse], error) {
	owner, err := ownerFilter(ctx, req.Msg.Mine)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{CreatedBy: owner})
	if err != nil {
		return nil, toConnectError(err)
	}

	table := aggregate.BuildMonthTable(expenses, s.engine, req.Msg.MonthKey, owner)
	rows := make([]MonthRow, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = MonthRow{Day: r.Day, Weekday: r.Weekday, PerCategory: r.PerCategory, Total: r.Total}
	}
	return connect.NewResponse(&MonthTableResponse{
		MonthKey:     table.MonthKey,
		MonthLabel:   table.MonthLabel,
		Categories:   table.Categories,
		Rows:         rows,
		ColumnTotals: table.ColumnTotals,
		GrandTotal:   table.GrandTotal,
		Currency:     currency.Resolve(expenses, s.engine.Fallback()),
	}), nil
}

// CategoryBreakdown totals spending per category, largest first.
func (s *LedgerService) CategoryBreakdown(ctx context.Context, req *connect.Request[CategoryBreakdownRequest]) (*connect.Response[CategoryBreakdownResponse], error) {
	owner, err := ownerFilter(ctx, req.Msg.Mine)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{CreatedBy: owner})
	if err != nil {
		return nil, toConnectError(err)
	}

	from, _ := dates.Normalize(req.Msg.From, s.engine.Loc())
	to, _ := dates.Normalize(req.Msg.To, s.engine.Loc())
	totals := aggregate.CategoryBreakdown(expenses, s.engine, owner, from, to)

	out := make([]CategoryTotal, len(totals))
	for i, t := range totals {
		out[i] = CategoryTotal{Category: t.Category, Amount: t.Amount, Share: t.Share}
	}
	return connect.NewResponse(&CategoryBreakdownResponse{
		Categories: out,
		Currency:   currency.Resolve(expenses, s.engine.Fallback()),
	}), nil
}

// Activity lists the most recently touched expenses.
func (s *LedgerService) Activity(ctx context.Context, req *connect.Request[ActivityRequest]) (*connect.Response[ActivityResponse], error) {
	groups, expenses, err := s.snapshot(ctx, storage.ExpenseFilter{})
	if err != nil {
		return nil, toConnectError(err)
	}

	limit := req.Msg.Limit
	if limit <= 0 {
		limit = 20
	}
	feed := aggregate.ActivityFeed(expenses, groups, limit)

	entries := make([]ActivityEntry, len(feed))
	for i, a := range feed {
		entries[i] = ActivityEntry{
			Expense:   toExpense(a.Expense),
			GroupName: a.GroupName,
			When:      toTimestamp(a.When),
		}
	}
	return connect.NewResponse(&ActivityResponse{Entries: entries}), nil
}

// ResolveCurrency reports the display currency and total of a set of
// expenses. Mixed sets carry no single total; each currency is summed
// separately.
func (s *LedgerService) ResolveCurrency(ctx context.Context, req *connect.Request[ResolveCurrencyRequest]) (*connect.Response[ResolveCurrencyResponse], error) {
	owner, err := ownerFilter(ctx, req.Msg.Mine)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: req.Msg.GroupID, CreatedBy: owner})
	if err != nil {
		return nil, toConnectError(err)
	}

	code := currency.Resolve(expenses, s.engine.Fallback())
	totals := currency.Totals(expenses, s.engine.Fallback())
	if code == config.Mixed {
		return connect.NewResponse(&ResolveCurrencyResponse{
			Currency: code,
			Totals:   totals,
			Display:  currency.FormatTotals(totals),
		}), nil
	}
	return connect.NewResponse(&ResolveCurrencyResponse{
		Currency: code,
		Total:    totals[code],
		Totals:   totals,
		Display:  currency.Format(totals[code], code),
	}), nil
}
