package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/spendboard/internal/dates"
	"github.com/mmynk/spendboard/internal/models"
)

var (
	yearToken  = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
	dayToken   = regexp.MustCompile(`(?:^|\D)(\d{1,2})(?:\D|$)`)
	monthToken = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ScanState is the context a pivot sheet carries from one row to the next.
type ScanState struct {
	// ActiveYear is seeded from the first year token in the sheet.
	ActiveYear int

	// ActiveMonth is the last month label seen; zero until one appears.
	ActiveMonth time.Month

	// ActiveDate is the last date resolved from a row; zero until one is.
	// A new month label clears it, so undated rows after the label fall on
	// the first of that month rather than a day of the previous one.
	ActiveDate time.Time
}

type pivotColumn struct {
	category string

	// col holds the category cell; amountCol the amount, which is col
	// itself when the header has no blank sub-column after the category.
	col, amountCol int
}

type pivotScanner struct {
	batch
	dateCol, monthCol int
	columns           []pivotColumn
}

func newPivotScanner(header []string, b batch) *pivotScanner {
	p := &pivotScanner{
		batch:    b,
		dateCol:  indexOf(header, "date"),
		monthCol: indexOf(header, "month"),
	}
	for i, h := range header {
		category, ok := b.eng.MatchCategory(h)
		if !ok {
			continue
		}
		amountCol := i
		if i+1 < len(header) && strings.TrimSpace(header[i+1]) == "" {
			amountCol = i + 1
		}
		p.columns = append(p.columns, pivotColumn{category: category, col: i, amountCol: amountCol})
	}
	return p
}

// parsePivot folds the scan state over every data row.
func parsePivot(rows [][]string, headerRow int, b batch) ([]models.Expense, int) {
	p := newPivotScanner(rows[headerRow], b)
	st := ScanState{ActiveYear: seedYear(rows, b.now.Year())}

	var (
		out     []models.Expense
		skipped int
	)
	for i := headerRow + 1; i < len(rows); i++ {
		var recs []models.Expense
		st, recs = p.step(st, rows[i], i)
		if len(recs) == 0 {
			skipped++
		}
		out = append(out, recs...)
	}
	return out, skipped
}

// seedYear returns the first 19xx/20xx token found in a non-numeric cell.
func seedYear(rows [][]string, fallback int) int {
	for _, row := range rows {
		for _, c := range row {
			if isNumeric(c) {
				continue
			}
			if y, ok := findYear(c); ok {
				return y
			}
		}
	}
	return fallback
}

func findYear(s string) (int, bool) {
	m := yearToken.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	return y, err == nil
}

func findMonth(s string) (time.Month, bool) {
	m := monthToken.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	month, ok := monthByPrefix[strings.ToLower(m[1][:3])]
	return month, ok
}

func findDay(s string) (int, bool) {
	m := dayToken.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	d, err := strconv.Atoi(m[1])
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

// isMonthLabel reports text naming a month without a day, e.g. "March 2024".
func isMonthLabel(s string) bool {
	if _, ok := findMonth(s); !ok {
		return false
	}
	_, hasDay := findDay(s)
	return !hasDay
}

func isTotal(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "total")
}

type pivotAmount struct {
	column pivotColumn
	amount float64
	note   string
}

// amounts returns the positive category amounts on row.
func (p *pivotScanner) amounts(row []string) []pivotAmount {
	var out []pivotAmount
	for _, c := range p.columns {
		own := cell(row, c.col)

		var amount float64
		if c.amountCol != c.col {
			if a, ok := parseAmount(cell(row, c.amountCol)); ok {
				amount = a
			}
		}
		if amount == 0 {
			if a, ok := parseAmount(own); ok {
				amount = a
			}
		}
		if amount <= 0 {
			continue
		}

		var note string
		if own != "" && !isNumeric(own) {
			note = own
		}
		out = append(out, pivotAmount{column: c, amount: amount, note: note})
	}
	return out
}

// step consumes one data row. It returns the updated state and the records
// the row yields, one per category with a positive amount.
func (p *pivotScanner) step(st ScanState, row []string, idx int) (ScanState, []models.Expense) {
	monthCell := cell(row, p.monthCol)
	dateCell := cell(row, p.dateCol)
	if isTotal(monthCell) || isTotal(dateCell) {
		return st, nil
	}

	label := monthCell
	if label == "" && isMonthLabel(dateCell) {
		label = dateCell
	}
	if label != "" {
		if y, ok := findYear(label); ok {
			st.ActiveYear = y
		}
		if m, ok := findMonth(label); ok {
			if m != st.ActiveMonth {
				st.ActiveDate = time.Time{}
			}
			st.ActiveMonth = m
		}
	}

	amounts := p.amounts(row)
	if dateCell == "" && label == "" && len(amounts) == 0 && st.ActiveDate.IsZero() {
		return st, nil
	}

	var when time.Time
	st, when = p.resolveDate(st, dateCell)

	recs := make([]models.Expense, 0, len(amounts))
	for _, a := range amounts {
		recs = append(recs, models.Expense{
			ID:        fmt.Sprintf("imp-%d-%s-%d-%d", p.stamp, p.nonce, idx, a.column.col),
			Amount:    a.amount,
			Category:  a.column.category,
			Currency:  p.eng.Fallback(),
			CreatedBy: p.owner,
			SplitType: models.SplitEqual,
			Note:      a.note,
			CreatedAt: when,
			UpdatedAt: when,
		})
	}
	return st, recs
}

// resolveDate tries, in order: the date cell as a full date, a day-of-month
// in the month the cell names (else the active month), the last resolved
// date, and the first of the active month.
func (p *pivotScanner) resolveDate(st ScanState, dateCell string) (ScanState, time.Time) {
	loc := p.eng.Loc()

	if dateCell != "" && !isMonthLabel(dateCell) {
		if _, hasYear := findYear(dateCell); hasYear {
			if t, ok := dates.Normalize(dateCell, loc); ok {
				st.ActiveDate = t
				return st, t
			}
		}
		month := st.ActiveMonth
		if m, ok := findMonth(dateCell); ok {
			month = m
		}
		if day, ok := findDay(dateCell); ok && month != 0 && day <= dates.DaysIn(st.ActiveYear, month) {
			t, _ := dates.Normalize(time.Date(st.ActiveYear, month, day, 0, 0, 0, 0, loc), loc)
			st.ActiveMonth = month
			st.ActiveDate = t
			return st, t
		}
	}

	if !st.ActiveDate.IsZero() {
		return st, st.ActiveDate
	}

	month := st.ActiveMonth
	if month == 0 {
		month = time.January
	}
	t, _ := dates.Normalize(time.Date(st.ActiveYear, month, 1, 0, 0, 0, 0, loc), loc)
	return st, t
}
