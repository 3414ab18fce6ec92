package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	LedgerServiceName     = "spendboard.v1.LedgerService"
	GroupServiceName      = "spendboard.v1.GroupService"
	ImportFileServiceName = "spendboard.v1.ImportFileService"
	PreferenceServiceName = "spendboard.v1.PreferenceService"
)

func procedure(service, method string) string {
	return "/" + service + "/" + method
}

// route mounts one unary procedure on mux. Handlers always speak the JSON
// codec; extra options such as interceptors are appended.
func route[Req, Res any](mux *http.ServeMux, service, method string, fn func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	path := procedure(service, method)
	mux.Handle(path, connect.NewUnaryHandler(path, fn, append([]connect.HandlerOption{WithJSON()}, opts...)...))
}

// NewLedgerServiceHandler builds an HTTP handler serving every LedgerService
// procedure. It returns the path prefix to mount it on.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, LedgerServiceName, "ImportCSV", svc.ImportCSV, opts)
	route(mux, LedgerServiceName, "AddExpense", svc.AddExpense, opts)
	route(mux, LedgerServiceName, "UpdateExpense", svc.UpdateExpense, opts)
	route(mux, LedgerServiceName, "ListExpenses", svc.ListExpenses, opts)
	route(mux, LedgerServiceName, "DeleteExpense", svc.DeleteExpense, opts)
	route(mux, LedgerServiceName, "GroupBalances", svc.GroupBalances, opts)
	route(mux, LedgerServiceName, "OverallBalances", svc.OverallBalances, opts)
	route(mux, LedgerServiceName, "RangeSeries", svc.RangeSeries, opts)
	route(mux, LedgerServiceName, "MonthTable", svc.MonthTable, opts)
	route(mux, LedgerServiceName, "CategoryBreakdown", svc.CategoryBreakdown, opts)
	route(mux, LedgerServiceName, "Activity", svc.Activity, opts)
	route(mux, LedgerServiceName, "ResolveCurrency", svc.ResolveCurrency, opts)
	return "/" + LedgerServiceName + "/", mux
}

// NewGroupServiceHandler builds an HTTP handler serving GroupService.
func NewGroupServiceHandler(svc *GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, GroupServiceName, "CreateGroup", svc.CreateGroup, opts)
	route(mux, GroupServiceName, "GetGroup", svc.GetGroup, opts)
	route(mux, GroupServiceName, "ListGroups", svc.ListGroups, opts)
	route(mux, GroupServiceName, "DeleteGroup", svc.DeleteGroup, opts)
	return "/" + GroupServiceName + "/", mux
}

// NewImportFileServiceHandler builds an HTTP handler serving ImportFileService.
func NewImportFileServiceHandler(svc *ImportFileService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, ImportFileServiceName, "ListFiles", svc.ListFiles, opts)
	route(mux, ImportFileServiceName, "UpdateFileCurrency", svc.UpdateFileCurrency, opts)
	route(mux, ImportFileServiceName, "DeleteFile", svc.DeleteFile, opts)
	return "/" + ImportFileServiceName + "/", mux
}

// NewPreferenceServiceHandler builds an HTTP handler serving PreferenceService.
func NewPreferenceServiceHandler(svc *PreferenceService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, PreferenceServiceName, "GetTiles", svc.GetTiles, opts)
	route(mux, PreferenceServiceName, "SaveTiles", svc.SaveTiles, opts)
	route(mux, PreferenceServiceName, "ExportPreferences", svc.ExportPreferences, opts)
	route(mux, PreferenceServiceName, "RestorePreferences", svc.RestorePreferences, opts)
	return "/" + PreferenceServiceName + "/", mux
}
