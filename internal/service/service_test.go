package service

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mmynk/spendboard/internal/auth"
	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/middleware"
	"github.com/mmynk/spendboard/internal/storage/sqlite"
)

var testNow = time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	url   string
	jwt   *auth.JWTManager
	token string
}

func testEngine() config.Engine {
	eng := config.DefaultEngine()
	eng.Location = time.UTC
	eng.Now = func() time.Time { return testNow }
	return eng
}

// setupTestServer serves every service over a fresh database. Requests are
// signed as user u1 unless env.token is cleared.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	eng := testEngine()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	opts := connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(NewLedgerServiceHandler(NewLedgerService(store, eng), opts))
	mux.Handle(NewGroupServiceHandler(NewGroupService(store), opts))
	mux.Handle(NewImportFileServiceHandler(NewImportFileService(store), opts))
	mux.Handle(NewPreferenceServiceHandler(NewPreferenceService(store, eng), opts))
	mux.Handle(ExportPath, middleware.HTTPAuth(jwtManager)(NewExportHandler(store, eng)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	token, err := jwtManager.Generate("u1", "Alice")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return &testEnv{url: server.URL, jwt: jwtManager, token: token}
}

func call[Req, Res any](env *testEnv, service, method string, msg *Req) (*Res, error) {
	client := connect.NewClient[Req, Res](http.DefaultClient, env.url+procedure(service, method), WithJSON())
	req := connect.NewRequest(msg)
	if env.token != "" {
		req.Header().Set("Authorization", "Bearer "+env.token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func createLisbon(t *testing.T, env *testEnv) Group {
	t.Helper()
	resp, err := call[CreateGroupRequest, CreateGroupResponse](env, GroupServiceName, "CreateGroup", &CreateGroupRequest{
		Name:     "Lisbon",
		Type:     "trip",
		Currency: "eur",
		Members:  []Member{{UID: "u1", Name: "Alice"}, {UID: "u2", Name: "Bob"}},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Group
}

const lisbonCSV = "date,category,amount,currency,group,paid by\n" +
	"2024-03-05,Food,42.50,EUR,Lisbon,Alice\n" +
	"2024-03-06,Transport,10,EUR,lisbon,Bob\n"

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	group := createLisbon(t, env)

	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Type != "trip" || group.Currency != "EUR" {
		t.Errorf("unexpected group: %+v", group)
	}
	if group.CreatedAt == nil {
		t.Error("expected CreatedAt")
	}

	got, err := call[GetGroupRequest, GetGroupResponse](env, GroupServiceName, "GetGroup", &GetGroupRequest{GroupID: group.ID})
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Group.Members) != 2 || got.Group.Members[1].Name != "Bob" {
		t.Errorf("unexpected members: %+v", got.Group.Members)
	}

	_, err = call[CreateGroupRequest, CreateGroupResponse](env, GroupServiceName, "CreateGroup", &CreateGroupRequest{Name: "  "})
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGroupNotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := call[GetGroupRequest, GetGroupResponse](env, GroupServiceName, "GetGroup", &GetGroupRequest{GroupID: "missing"})
	assertCode(t, err, connect.CodeNotFound)

	_, err = call[DeleteGroupRequest, DeleteGroupResponse](env, GroupServiceName, "DeleteGroup", &DeleteGroupRequest{GroupID: "missing"})
	assertCode(t, err, connect.CodeNotFound)

	_, err = call[GroupBalancesRequest, GroupBalancesResponse](env, LedgerServiceName, "GroupBalances", &GroupBalancesRequest{GroupID: "missing"})
	assertCode(t, err, connect.CodeNotFound)
}

func TestImportCSV_GroupBalances(t *testing.T) {
	env := setupTestServer(t)
	group := createLisbon(t, env)

	imported, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &ImportCSVRequest{
		Name: "lisbon.csv",
		Text: lisbonCSV,
	})
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if imported.Schema != "flat" || imported.Imported != 2 {
		t.Errorf("unexpected import result: %+v", imported)
	}

	resp, err := call[GroupBalancesRequest, GroupBalancesResponse](env, LedgerServiceName, "GroupBalances", &GroupBalancesRequest{GroupID: group.ID})
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if resp.Currency != "EUR" {
		t.Errorf("currency: expected EUR, got %s", resp.Currency)
	}

	nets := map[string]float64{}
	var sum float64
	for _, b := range resp.Balances {
		nets[b.MemberID] = b.Net
		sum += b.Net
	}
	if math.Abs(nets["u1"]-16.25) > 1e-9 || math.Abs(nets["u2"]+16.25) > 1e-9 {
		t.Errorf("unexpected nets: %v", nets)
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("nets should sum to zero, got %v", sum)
	}

	if len(resp.Settlements) != 1 {
		t.Fatalf("expected 1 settlement, got %d", len(resp.Settlements))
	}
	s := resp.Settlements[0]
	if s.From != "u2" || s.To != "u1" || math.Abs(s.Amount-16.25) > 1e-9 {
		t.Errorf("unexpected settlement: %+v", s)
	}

	overall, err := call[OverallBalancesRequest, OverallBalancesResponse](env, LedgerServiceName, "OverallBalances", &OverallBalancesRequest{})
	if err != nil {
		t.Fatalf("OverallBalances failed: %v", err)
	}
	if len(overall.Balances) != 2 {
		t.Errorf("expected 2 overall balances, got %d", len(overall.Balances))
	}
}

func TestImportCSV_Rejected(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		req  ImportCSVRequest
	}{
		{"xlsx", ImportCSVRequest{Name: "book.xlsx", Text: "PK\x03\x04....[Content_Types].xml...."}},
		{"no valid rows", ImportCSVRequest{Name: "empty.csv", Text: "date,amount\n,\n"}},
		{"unknown currency", ImportCSVRequest{Name: "a.csv", Text: lisbonCSV, Currency: "EURO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &tt.req)
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	list, err := call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Expenses) != 0 {
		t.Errorf("rejected imports stored %d expenses", len(list.Expenses))
	}
}

func TestExpenseLifecycle(t *testing.T) {
	env := setupTestServer(t)

	added, err := call[AddExpenseRequest, AddExpenseResponse](env, LedgerServiceName, "AddExpense", &AddExpenseRequest{
		Expense: Expense{Amount: 12.5, Category: "food", CreatedAt: timestamppb.New(time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC))},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	e := added.Expense
	if e.ID == "" || e.Category != "Food" || e.Currency != "USD" || e.CreatedBy != "u1" {
		t.Errorf("unexpected expense: %+v", e)
	}
	if e.PaidByUID != "u1" || e.PaidByName != "Alice" {
		t.Errorf("expected the caller as payer, got %q %q", e.PaidByUID, e.PaidByName)
	}
	if got := e.CreatedAt.AsTime(); got.Hour() != 12 {
		t.Errorf("expected midnight to be moved to noon, got %v", got)
	}
	if !strings.Contains(e.Display, "12.50") {
		t.Errorf("unexpected display %q", e.Display)
	}

	category := "Yachts"
	updated, err := call[UpdateExpenseRequest, UpdateExpenseResponse](env, LedgerServiceName, "UpdateExpense", &UpdateExpenseRequest{ID: e.ID, Category: &category})
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Expense.Category != config.Miscellaneous || updated.Expense.Amount != 12.5 {
		t.Errorf("unexpected update: %+v", updated.Expense)
	}

	series, err := call[RangeSeriesRequest, RangeSeriesResponse](env, LedgerServiceName, "RangeSeries", &RangeSeriesRequest{RangeKey: "7d", Mine: true})
	if err != nil {
		t.Fatalf("RangeSeries failed: %v", err)
	}
	if len(series.Buckets) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(series.Buckets))
	}
	if series.Buckets[4].Label != "Mar 18" || series.Buckets[4].Amount != 12.5 {
		t.Errorf("unexpected bucket: %+v", series.Buckets[4])
	}

	_, err = call[DeleteExpenseRequest, DeleteExpenseResponse](env, LedgerServiceName, "DeleteExpense", &DeleteExpenseRequest{ID: e.ID})
	if err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = call[DeleteExpenseRequest, DeleteExpenseResponse](env, LedgerServiceName, "DeleteExpense", &DeleteExpenseRequest{ID: e.ID})
	assertCode(t, err, connect.CodeNotFound)

	_, err = call[AddExpenseRequest, AddExpenseResponse](env, LedgerServiceName, "AddExpense", &AddExpenseRequest{Expense: Expense{Amount: -1}})
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestMineRequiresIdentity(t *testing.T) {
	env := setupTestServer(t)
	env.token = ""

	_, err := call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{Mine: true})
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{})
	if err != nil {
		t.Errorf("anonymous unfiltered listing failed: %v", err)
	}

	env.token = "garbage"
	_, err = call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{})
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestViewsAndCurrency(t *testing.T) {
	env := setupTestServer(t)
	createLisbon(t, env)

	if _, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &ImportCSVRequest{Name: "lisbon.csv", Text: lisbonCSV}); err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}

	table, err := call[MonthTableRequest, MonthTableResponse](env, LedgerServiceName, "MonthTable", &MonthTableRequest{MonthKey: "2024-03"})
	if err != nil {
		t.Fatalf("MonthTable failed: %v", err)
	}
	if table.MonthLabel != "March 2024" || len(table.Rows) != 2 || table.GrandTotal != 52.5 {
		t.Errorf("unexpected table: %+v", table)
	}

	breakdown, err := call[CategoryBreakdownRequest, CategoryBreakdownResponse](env, LedgerServiceName, "CategoryBreakdown", &CategoryBreakdownRequest{})
	if err != nil {
		t.Fatalf("CategoryBreakdown failed: %v", err)
	}
	if len(breakdown.Categories) != 2 || breakdown.Categories[0].Category != "Food" {
		t.Errorf("unexpected breakdown: %+v", breakdown.Categories)
	}

	activity, err := call[ActivityRequest, ActivityResponse](env, LedgerServiceName, "Activity", &ActivityRequest{Limit: 1})
	if err != nil {
		t.Fatalf("Activity failed: %v", err)
	}
	if len(activity.Entries) != 1 || activity.Entries[0].GroupName != "Lisbon" {
		t.Errorf("unexpected activity: %+v", activity.Entries)
	}

	resolved, err := call[ResolveCurrencyRequest, ResolveCurrencyResponse](env, LedgerServiceName, "ResolveCurrency", &ResolveCurrencyRequest{})
	if err != nil {
		t.Fatalf("ResolveCurrency failed: %v", err)
	}
	if resolved.Currency != "EUR" || resolved.Total != 52.5 {
		t.Errorf("unexpected resolution: %+v", resolved)
	}

	if _, err := call[AddExpenseRequest, AddExpenseResponse](env, LedgerServiceName, "AddExpense", &AddExpenseRequest{Expense: Expense{Amount: 1, Category: "Food", Currency: "USD"}}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	mixed, err := call[ResolveCurrencyRequest, ResolveCurrencyResponse](env, LedgerServiceName, "ResolveCurrency", &ResolveCurrencyRequest{})
	if err != nil {
		t.Fatalf("ResolveCurrency failed: %v", err)
	}
	if mixed.Currency != config.Mixed || mixed.Total != 0 {
		t.Errorf("expected mixed currency without a total, got %+v", mixed)
	}
	if mixed.Totals["EUR"] != 52.5 || mixed.Totals["USD"] != 1 || !strings.Contains(mixed.Display, " + ") {
		t.Errorf("expected per-currency totals, got %+v", mixed)
	}
}

func TestImportFiles(t *testing.T) {
	env := setupTestServer(t)

	imported, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &ImportCSVRequest{
		Name: "march.csv",
		Text: "date,category,amount\n2024-03-05,Food,10\n",
	})
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if imported.File.Currency != "USD" {
		t.Errorf("expected default currency, got %s", imported.File.Currency)
	}

	files, err := call[ListFilesRequest, ListFilesResponse](env, ImportFileServiceName, "ListFiles", &ListFilesRequest{Mine: true})
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files.Files) != 1 || files.Files[0].RowCount != 1 {
		t.Fatalf("unexpected files: %+v", files.Files)
	}

	updated, err := call[UpdateFileCurrencyRequest, UpdateFileCurrencyResponse](env, ImportFileServiceName, "UpdateFileCurrency", &UpdateFileCurrencyRequest{FileID: imported.File.ID, Currency: "gbp"})
	if err != nil {
		t.Fatalf("UpdateFileCurrency failed: %v", err)
	}
	if updated.File.Currency != "GBP" {
		t.Errorf("expected GBP, got %s", updated.File.Currency)
	}

	list, err := call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{Mine: true})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if list.Currency != "GBP" {
		t.Errorf("expected imported records re-tagged to GBP, got %s", list.Currency)
	}

	_, err = call[UpdateFileCurrencyRequest, UpdateFileCurrencyResponse](env, ImportFileServiceName, "UpdateFileCurrency", &UpdateFileCurrencyRequest{FileID: imported.File.ID, Currency: "nope"})
	assertCode(t, err, connect.CodeInvalidArgument)

	if _, err := call[DeleteFileRequest, DeleteFileResponse](env, ImportFileServiceName, "DeleteFile", &DeleteFileRequest{FileID: imported.File.ID}); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	list, err = call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Expenses) != 1 {
		t.Errorf("deleting a file should keep its records, got %d", len(list.Expenses))
	}
}

func TestTilesAndPreferences(t *testing.T) {
	env := setupTestServer(t)

	tiles, err := call[GetTilesRequest, GetTilesResponse](env, PreferenceServiceName, "GetTiles", &GetTilesRequest{})
	if err != nil {
		t.Fatalf("GetTiles failed: %v", err)
	}
	if len(tiles.Tiles) != len(DefaultTiles()) {
		t.Errorf("expected default tiles, got %d", len(tiles.Tiles))
	}

	bad := []Tile{
		{ID: "a", Kind: "range", RangeKey: "9y"},
		{ID: "b", Kind: "month", MonthKey: "2024-13"},
		{ID: "c", Kind: "range", RangeKey: "7d", MonthKey: "2024-03"},
	}
	for _, tile := range bad {
		_, err := call[SaveTilesRequest, SaveTilesResponse](env, PreferenceServiceName, "SaveTiles", &SaveTilesRequest{Tiles: []Tile{tile}})
		assertCode(t, err, connect.CodeInvalidArgument)
	}

	mine := []Tile{{ID: "q", Label: "Quarter", Kind: "range", RangeKey: "3m"}}
	if _, err := call[SaveTilesRequest, SaveTilesResponse](env, PreferenceServiceName, "SaveTiles", &SaveTilesRequest{Tiles: mine}); err != nil {
		t.Fatalf("SaveTiles failed: %v", err)
	}
	if _, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &ImportCSVRequest{Name: "m.csv", Text: "date,category,amount\n2024-03-05,Food,10\n"}); err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}

	exported, err := call[ExportPreferencesRequest, ExportPreferencesResponse](env, PreferenceServiceName, "ExportPreferences", &ExportPreferencesRequest{})
	if err != nil {
		t.Fatalf("ExportPreferences failed: %v", err)
	}

	fresh := setupTestServer(t)
	restored, err := call[RestorePreferencesRequest, RestorePreferencesResponse](fresh, PreferenceServiceName, "RestorePreferences", &RestorePreferencesRequest{Data: exported.Data})
	if err != nil {
		t.Fatalf("RestorePreferences failed: %v", err)
	}
	if restored.Expenses != 1 || restored.Files != 1 || restored.Tiles != 1 {
		t.Errorf("unexpected restore counts: %+v", restored)
	}

	again, err := call[GetTilesRequest, GetTilesResponse](fresh, PreferenceServiceName, "GetTiles", &GetTilesRequest{})
	if err != nil {
		t.Fatalf("GetTiles failed: %v", err)
	}
	if len(again.Tiles) != 1 || again.Tiles[0].RangeKey != "3m" {
		t.Errorf("unexpected restored tiles: %+v", again.Tiles)
	}

	fresh.token = ""
	_, err = call[GetTilesRequest, GetTilesResponse](fresh, PreferenceServiceName, "GetTiles", &GetTilesRequest{})
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestRestorePreferences_SkipsOtherUsersRecords(t *testing.T) {
	env := setupTestServer(t)

	if _, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &ImportCSVRequest{Name: "m.csv", Text: "date,category,amount\n2024-03-05,Food,10\n"}); err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	exported, err := call[ExportPreferencesRequest, ExportPreferencesResponse](env, PreferenceServiceName, "ExportPreferences", &ExportPreferencesRequest{})
	if err != nil {
		t.Fatalf("ExportPreferences failed: %v", err)
	}

	ownerToken := env.token
	env.token, err = env.jwt.Generate("u2", "Bob")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	restored, err := call[RestorePreferencesRequest, RestorePreferencesResponse](env, PreferenceServiceName, "RestorePreferences", &RestorePreferencesRequest{Data: exported.Data})
	if err != nil {
		t.Fatalf("RestorePreferences failed: %v", err)
	}
	if restored.Expenses != 0 || restored.Skipped != 1 || restored.Files != 0 {
		t.Errorf("expected the foreign record and file to be skipped, got %+v", restored)
	}

	env.token = ownerToken
	list, err := call[ListExpensesRequest, ListExpensesResponse](env, LedgerServiceName, "ListExpenses", &ListExpensesRequest{Mine: true})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Expenses) != 1 || list.Expenses[0].CreatedBy != "u1" || list.Expenses[0].ImportFileID == "" {
		t.Errorf("expected u1 to keep their imported record, got %+v", list.Expenses)
	}
}

func TestExportMonthCSV(t *testing.T) {
	env := setupTestServer(t)
	if _, err := call[ImportCSVRequest, ImportCSVResponse](env, LedgerServiceName, "ImportCSV", &ImportCSVRequest{Name: "m.csv", Text: "date,category,amount\n2024-03-05,Food,10\n"}); err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}

	resp, err := http.Get(env.url + ExportPath + "?month=2024-03")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, one day and totals, got %d lines:\n%s", len(lines), body)
	}
	if !strings.HasPrefix(lines[0], `"Month","Date","Food"`) || !strings.HasSuffix(lines[0], `"Total Spend"`) {
		t.Errorf("unexpected header %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], `"March 2024","5 - Tuesday","10.00"`) {
		t.Errorf("unexpected row %s", lines[1])
	}

	mine, err := http.Get(env.url + ExportPath + "?mine=1")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	mine.Body.Close()
	if mine.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous mine export, got %d", mine.StatusCode)
	}
}

func TestToConnectError(t *testing.T) {
	if got := connect.CodeOf(toConnectError(errors.New("boom"))); got != connect.CodeInternal {
		t.Errorf("expected internal, got %v", got)
	}
}
