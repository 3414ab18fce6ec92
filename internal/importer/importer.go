// Package importer turns raw CSV exports into expense records.
//
// Two layouts are understood: a flat list with one transaction per row, and
// a pivoted "monthly spend analysis" sheet with one row per day and category
// amounts spread across columns. DetectSchema classifies a sheet first; the
// layout-specific parser runs afterwards.
//
// Unparseable rows are dropped silently. Only whole-file problems surface as
// errors: ErrSpreadsheetBinary and ErrNoValidRows.
package importer

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/csvscan"
	"github.com/mmynk/spendboard/internal/metrics"
	"github.com/mmynk/spendboard/internal/models"
)

var (
	// ErrNoValidRows means the text held no usable rows for either layout.
	ErrNoValidRows = errors.New("no valid rows found in CSV")

	// ErrSpreadsheetBinary means an .xlsx workbook was supplied as CSV.
	ErrSpreadsheetBinary = errors.New("this file looks like an .xlsx file; re-export it as CSV or TSV and try again")
)

// Result is the outcome of one import.
type Result struct {
	Schema   Schema
	Expenses []models.Expense

	// DataRows counts rows after the header; Skipped counts those that
	// produced no record.
	DataRows int
	Skipped  int
}

// Importer builds expense records from CSV text.
type Importer struct {
	engine config.Engine
}

// New creates an Importer for the given engine configuration.
func New(eng config.Engine) *Importer {
	return &Importer{engine: eng}
}

// BuildExpenses parses text and returns the canonical records. Groups are
// matched by name for the flat layout; ownerID becomes CreatedBy.
func (im *Importer) BuildExpenses(text string, groups []models.Group, ownerID string) ([]models.Expense, error) {
	res, err := im.Parse(text, groups, ownerID)
	if err != nil {
		return nil, err
	}
	return res.Expenses, nil
}

// Parse is BuildExpenses with the detected schema and row counts attached.
func (im *Importer) Parse(text string, groups []models.Group, ownerID string) (Result, error) {
	if isSpreadsheetBinary(text) {
		metrics.ImportFailures.WithLabelValues("xlsx").Inc()
		return Result{}, ErrSpreadsheetBinary
	}

	rows := csvscan.Parse(text)
	if len(rows) < 2 {
		metrics.ImportFailures.WithLabelValues("too_few_rows").Inc()
		return Result{}, ErrNoValidRows
	}

	schema := DetectSchema(rows, im.engine)
	now := im.engine.Today()
	b := batch{
		eng:    im.engine,
		groups: groups,
		owner:  ownerID,
		stamp:  now.UnixMilli(),
		nonce:  uuid.New().String()[:8],
		now:    now,
	}

	res := Result{Schema: schema, DataRows: len(rows) - schema.HeaderRow - 1}
	switch schema.Kind {
	case Flat:
		res.Expenses, res.Skipped = parseFlat(rows, schema.HeaderRow, b)
	case Pivot:
		res.Expenses, res.Skipped = parsePivot(rows, schema.HeaderRow, b)
	default:
		metrics.ImportFailures.WithLabelValues("unrecognized").Inc()
		return res, ErrNoValidRows
	}

	metrics.ImportRows.WithLabelValues(schema.Kind.String(), "imported").Add(float64(res.DataRows - res.Skipped))
	metrics.ImportRows.WithLabelValues(schema.Kind.String(), "skipped").Add(float64(res.Skipped))

	slog.Debug("CSV parsed",
		"schema", schema.Kind.String(),
		"header_row", schema.HeaderRow,
		"data_rows", res.DataRows,
		"skipped", res.Skipped,
		"records", len(res.Expenses),
	)

	if len(res.Expenses) == 0 {
		metrics.ImportFailures.WithLabelValues("empty").Inc()
		return res, ErrNoValidRows
	}
	return res, nil
}

// Import parses text and describes it as a remembered import file. Every
// returned expense links back to the file. Importing the same text twice
// yields two files with disjoint record IDs.
func (im *Importer) Import(name, text string, groups []models.Group, ownerID string) (models.CSVImportFile, Result, error) {
	res, err := im.Parse(text, groups, ownerID)
	if err != nil {
		slog.Warn("CSV import rejected", "file", name, "error", err)
		return models.CSVImportFile{}, Result{Schema: res.Schema}, err
	}

	file := models.CSVImportFile{
		ID:         uuid.New().String(),
		Name:       name,
		Text:       text,
		RowCount:   res.DataRows,
		Currency:   im.engine.Fallback(),
		ImportedAt: im.engine.Today(),
		CreatedBy:  ownerID,
	}
	for i := range res.Expenses {
		res.Expenses[i].ImportFileID = file.ID
	}

	slog.Info("CSV imported",
		"file", name,
		"file_id", file.ID,
		"schema", res.Schema.Kind.String(),
		"records", len(res.Expenses),
	)
	return file, res, nil
}

// WithCurrency returns copies of expenses re-tagged with code.
func WithCurrency(expenses []models.Expense, code string, now time.Time) []models.Expense {
	out := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		e.Currency = code
		e.UpdatedAt = now
		out[i] = e
	}
	return out
}

// isSpreadsheetBinary detects a zip container holding an Office workbook.
func isSpreadsheetBinary(text string) bool {
	return strings.HasPrefix(text, "PK") && strings.Contains(text, "[Content_Types].xml")
}
