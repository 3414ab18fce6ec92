package models

import "time"

// CSVImportFile is a remembered import source. It lives independently of
// the expenses it produced.
type CSVImportFile struct {
	ID         string
	Name       string
	Text       string
	RowCount   int
	Currency   string
	ImportedAt time.Time
	CreatedBy  string
}
