package aggregate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// WriteMonthCSV writes table as a spreadsheet-friendly CSV: a header of
// Month, Date, each category and Total Spend; one row per day with
// expenses; and a trailing Total row. Every field is quoted.
func WriteMonthCSV(w io.Writer, table MonthTable) error {
	bw := bufio.NewWriter(w)

	header := make([]string, 0, len(table.Categories)+3)
	header = append(header, "Month", "Date")
	header = append(header, table.Categories...)
	header = append(header, "Total Spend")
	if err := writeQuoted(bw, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range table.Rows {
		fields := make([]string, 0, len(header))
		fields = append(fields, table.MonthLabel, fmt.Sprintf("%d - %s", row.Day, row.Weekday))
		for _, c := range table.Categories {
			fields = append(fields, money(row.PerCategory[c], true))
		}
		fields = append(fields, money(row.Total, false))
		if err := writeQuoted(bw, fields); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	footer := make([]string, 0, len(header))
	footer = append(footer, "Total", "")
	for _, c := range table.Categories {
		footer = append(footer, money(table.ColumnTotals[c], false))
	}
	footer = append(footer, money(table.GrandTotal, false))
	if err := writeQuoted(bw, footer); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	return bw.Flush()
}

// money renders a two-place amount; blankZero leaves empty cells empty.
func money(v float64, blankZero bool) string {
	if blankZero && v == 0 {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func writeQuoted(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}
