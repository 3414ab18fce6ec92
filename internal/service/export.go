package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmynk/spendboard/internal/aggregate"
	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/middleware"
	"github.com/mmynk/spendboard/internal/storage"
)

// ExportPath serves the month table as CSV.
const ExportPath = "/export/month.csv"

// NewExportHandler serves GET /export/month.csv?month=YYYY-MM[&mine=1].
// Without a month the current month is exported.
func NewExportHandler(store storage.Store, eng config.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var owner string
		if r.URL.Query().Get("mine") != "" {
			owner = middleware.GetUserID(r.Context())
			if owner == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
		}

		expenses, err := store.ListExpenses(r.Context(), storage.ExpenseFilter{CreatedBy: owner})
		if err != nil {
			slog.Error("Export failed", "error", err)
			http.Error(w, "failed to load expenses", http.StatusInternalServerError)
			return
		}

		table := aggregate.BuildMonthTable(expenses, eng, r.URL.Query().Get("month"), owner)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="spend-%s.csv"`, table.MonthKey))
		if err := aggregate.WriteMonthCSV(w, table); err != nil {
			slog.Error("Export write failed", "month", table.MonthKey, "error", err)
			return
		}
		slog.Info("Month exported", "month", table.MonthKey, "rows", len(table.Rows))
	})
}
