// Package csvscan tokenizes loosely-formed delimited text into rows.
//
// Spreadsheet exports disagree on delimiters, so any of comma, semicolon or
// tab outside quotes separates fields, even within one file. Quoted fields
// may hold delimiters and newlines, and "" inside quotes is a literal quote.
package csvscan

import (
	"regexp"
	"strings"
)

const bom = "\ufeff"

var wideGap = regexp.MustCompile(` {2,}`)

// Parse splits text into rows of fields. NUL bytes, a leading byte-order
// mark and carriage returns are dropped; rows with only blank fields are
// discarded. When no row has more than one field, lines are re-split on runs
// of two or more spaces to recover fixed-width exports.
func Parse(text string) [][]string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.TrimPrefix(text, bom)

	rows := scan(text)
	if len(rows) > 0 && allSingleField(rows) {
		return splitFixedWidth(text)
	}
	return rows
}

func scan(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			switch {
			case c == '"' && i+1 < len(text) && text[i+1] == '"':
				field.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			case c == '\r':
			default:
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',', ';', '\t':
			endField()
		case '\n':
			endRow()
		case '\r':
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func allSingleField(rows [][]string) bool {
	for _, r := range rows {
		if len(r) > 1 {
			return false
		}
	}
	return true
}

func splitFixedWidth(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\r", ""))
		if line == "" {
			continue
		}
		rows = append(rows, wideGap.Split(line, -1))
	}
	return rows
}
