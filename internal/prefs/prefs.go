// Package prefs persists the per-user preference blob: imported expense
// records, remembered CSV files and dashboard tiles.
//
// Dates are written as RFC 3339 strings and read back through
// dates.Normalize, so older blobs holding epoch milliseconds still load.
package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/spendboard/internal/dates"
	"github.com/mmynk/spendboard/internal/models"
)

// Preferences is the decoded blob.
type Preferences struct {
	ImportedExpenses []models.Expense
	CSVFiles         []models.CSVImportFile
	Tiles            []models.DashboardTile
}

type expenseRecord struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category"`
	Currency     string  `json:"currency,omitempty"`
	GroupID      string  `json:"groupId,omitempty"`
	PaidByUID    string  `json:"paidByUid,omitempty"`
	PaidByName   string  `json:"paidByName,omitempty"`
	CreatedBy    string  `json:"createdBy,omitempty"`
	SplitType    string  `json:"splitType,omitempty"`
	Note         string  `json:"note,omitempty"`
	ImportFileID string  `json:"importFileId,omitempty"`
	CreatedAt    any     `json:"createdAt"`
	UpdatedAt    any     `json:"updatedAt,omitempty"`
}

type fileRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Text       string `json:"text"`
	RowCount   int    `json:"rowCount"`
	Currency   string `json:"currency,omitempty"`
	ImportedAt any    `json:"importedAt,omitempty"`
	CreatedBy  string `json:"createdBy,omitempty"`
}

type tileRecord struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Size     string `json:"size,omitempty"`
	Kind     string `json:"kind"`
	RangeKey string `json:"rangeKey,omitempty"`
	MonthKey string `json:"monthKey,omitempty"`
}

type blob struct {
	ImportedExpenses []expenseRecord `json:"importedExpenses"`
	CSVFiles         []fileRecord    `json:"csvFiles"`
	Tiles            []tileRecord    `json:"tiles,omitempty"`
}

// Codec encodes and decodes preference blobs.
type Codec struct {
	// Location anchors date-only strings.
	Location *time.Location

	// Fallback is the currency given to records and files that carry none.
	Fallback string
}

// Marshal encodes p. Zero dates are written as null.
func (c Codec) Marshal(p Preferences) ([]byte, error) {
	b := blob{
		ImportedExpenses: make([]expenseRecord, 0, len(p.ImportedExpenses)),
		CSVFiles:         make([]fileRecord, 0, len(p.CSVFiles)),
	}
	for _, e := range p.ImportedExpenses {
		b.ImportedExpenses = append(b.ImportedExpenses, expenseRecord{
			ID:           e.ID,
			Amount:       e.Amount,
			Category:     e.Category,
			Currency:     e.Currency,
			GroupID:      e.GroupID,
			PaidByUID:    e.PaidByUID,
			PaidByName:   e.PaidByName,
			CreatedBy:    e.CreatedBy,
			SplitType:    string(e.SplitType),
			Note:         e.Note,
			ImportFileID: e.ImportFileID,
			CreatedAt:    formatDate(e.CreatedAt),
			UpdatedAt:    formatDate(e.UpdatedAt),
		})
	}
	for _, f := range p.CSVFiles {
		b.CSVFiles = append(b.CSVFiles, fileRecord{
			ID:         f.ID,
			Name:       f.Name,
			Text:       f.Text,
			RowCount:   f.RowCount,
			Currency:   f.Currency,
			ImportedAt: formatDate(f.ImportedAt),
			CreatedBy:  f.CreatedBy,
		})
	}
	for _, t := range p.Tiles {
		b.Tiles = append(b.Tiles, tileRecord{
			ID:       t.ID,
			Label:    t.Label,
			Size:     t.Size,
			Kind:     string(t.Kind),
			RangeKey: t.RangeKey,
			MonthKey: t.MonthKey,
		})
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a blob. Expenses whose creation date cannot be read are
// dropped, as are invalid tiles. Files keep a zero ImportedAt instead.
// Missing currencies become the fallback. An empty blob decodes to empty
// preferences.
func (c Codec) Unmarshal(data []byte) (Preferences, error) {
	var p Preferences
	if len(data) == 0 {
		return p, nil
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return p, fmt.Errorf("failed to decode preferences: %w", err)
	}

	dropped := 0
	for _, r := range b.ImportedExpenses {
		created, ok := dates.Normalize(r.CreatedAt, c.Location)
		if !ok {
			dropped++
			continue
		}
		updated, ok := dates.Normalize(r.UpdatedAt, c.Location)
		if !ok {
			updated = created
		}
		p.ImportedExpenses = append(p.ImportedExpenses, models.Expense{
			ID:           r.ID,
			Amount:       r.Amount,
			Category:     r.Category,
			Currency:     c.currency(r.Currency),
			GroupID:      r.GroupID,
			PaidByUID:    r.PaidByUID,
			PaidByName:   r.PaidByName,
			CreatedBy:    r.CreatedBy,
			SplitType:    models.ParseSplitType(r.SplitType),
			Note:         r.Note,
			ImportFileID: r.ImportFileID,
			CreatedAt:    created,
			UpdatedAt:    updated,
		})
	}

	for _, r := range b.CSVFiles {
		imported, _ := dates.Normalize(r.ImportedAt, c.Location)
		p.CSVFiles = append(p.CSVFiles, models.CSVImportFile{
			ID:         r.ID,
			Name:       r.Name,
			Text:       r.Text,
			RowCount:   r.RowCount,
			Currency:   c.currency(r.Currency),
			ImportedAt: imported,
			CreatedBy:  r.CreatedBy,
		})
	}

	for _, r := range b.Tiles {
		t := models.DashboardTile{
			ID:       r.ID,
			Label:    r.Label,
			Size:     r.Size,
			Kind:     models.TileKind(r.Kind),
			RangeKey: r.RangeKey,
			MonthKey: r.MonthKey,
		}
		if err := t.Validate(); err != nil {
			dropped++
			continue
		}
		p.Tiles = append(p.Tiles, t)
	}

	if dropped > 0 {
		slog.Debug("Dropped unreadable preference records", "count", dropped)
	}
	return p, nil
}

func (c Codec) currency(code string) string {
	if code == "" {
		return c.Fallback
	}
	return code
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return dates.Format(t)
}
