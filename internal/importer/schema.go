package importer

import (
	"strings"

	"github.com/mmynk/spendboard/internal/config"
)

// SchemaKind tags the layout of an import.
type SchemaKind int

const (
	Unrecognized SchemaKind = iota
	Flat
	Pivot
)

func (k SchemaKind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Pivot:
		return "pivot"
	default:
		return "unrecognized"
	}
}

// Schema is the classifier's verdict for a parsed sheet.
type Schema struct {
	Kind SchemaKind

	// HeaderRow indexes the header within the parsed rows.
	HeaderRow int
}

const monthlySpendTitle = "monthly spend analysis"

// Column aliases for the flat layout, compared after FoldKey.
var (
	amountAliases   = []string{"amount", "total", "value", "cost"}
	categoryAliases = []string{"category", "type"}
	currencyAliases = []string{"currency", "cur"}
	dateAliases     = []string{"date", "createdat", "created_at", "time"}
	groupAliases    = []string{"group", "groupname", "group_name"}
	payerAliases    = []string{"paidby", "paid_by", "payer", "member", "name"}
	noteAliases     = []string{"note", "notes", "description"}
)

// DetectSchema locates the header row and classifies the sheet.
func DetectSchema(rows [][]string, eng config.Engine) Schema {
	if len(rows) == 0 {
		return Schema{Kind: Unrecognized}
	}
	headerRow := LocateHeader(rows, eng)
	if headerRow >= len(rows) {
		return Schema{Kind: Unrecognized, HeaderRow: headerRow}
	}
	header := rows[headerRow]

	hasDateLike := indexOf(header, "date") >= 0 || indexOf(header, "month") >= 0
	if hasDateLike && hasCategoryColumn(header, eng) {
		return Schema{Kind: Pivot, HeaderRow: headerRow}
	}
	if findColumn(header, amountAliases) >= 0 {
		return Schema{Kind: Flat, HeaderRow: headerRow}
	}
	return Schema{Kind: Unrecognized, HeaderRow: headerRow}
}

// LocateHeader returns the index of the first row holding a date column
// together with a month column, a total spend column or a known category.
// Without such a row, a "monthly spend analysis" title pushes the header to
// the second row; otherwise the first row is the header.
func LocateHeader(rows [][]string, eng config.Engine) int {
	for i, row := range rows {
		if indexOf(row, "date") < 0 {
			continue
		}
		if indexOf(row, "month") >= 0 || indexOf(row, "totalspend") >= 0 || hasCategoryColumn(row, eng) {
			return i
		}
	}
	if len(rows[0]) > 0 && strings.Contains(strings.ToLower(rows[0][0]), monthlySpendTitle) {
		return 1
	}
	return 0
}

func hasCategoryColumn(header []string, eng config.Engine) bool {
	for _, h := range header {
		if _, ok := eng.MatchCategory(h); ok {
			return true
		}
	}
	return false
}

func indexOf(header []string, key string) int {
	for i, h := range header {
		if config.FoldKey(h) == key {
			return i
		}
	}
	return -1
}

// findColumn returns the first header index matching any alias.
func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		key := config.FoldKey(h)
		for _, a := range aliases {
			if key == a {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
