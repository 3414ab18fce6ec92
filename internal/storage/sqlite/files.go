package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/storage"
)

// CreateImportFile remembers an imported CSV file.
func (s *SQLiteStore) CreateImportFile(ctx context.Context, file *models.CSVImportFile) error {
	return insertImportFile(ctx, s.db, file)
}

// SaveImport stores an import file and the expenses read from it in one
// transaction, so a failed import leaves neither behind.
func (s *SQLiteStore) SaveImport(ctx context.Context, file *models.CSVImportFile, expenses []models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertImportFile(ctx, tx, file); err != nil {
		return err
	}
	for i := range expenses {
		expenses[i].ImportFileID = file.ID
	}
	if err := insertExpenses(ctx, tx, expenses); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertImportFile(ctx context.Context, db execer, file *models.CSVImportFile) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.ImportedAt.IsZero() {
		file.ImportedAt = time.Now()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO import_files (id, name, text, row_count, currency, imported_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.Name, file.Text, file.RowCount, file.Currency,
		millis(file.ImportedAt), file.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create import file: %w", err)
	}
	return nil
}

// GetImportFile retrieves an import file by ID.
func (s *SQLiteStore) GetImportFile(ctx context.Context, fileID string) (*models.CSVImportFile, error) {
	f := &models.CSVImportFile{}
	var importedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, text, row_count, currency, imported_at, created_by
		 FROM import_files WHERE id = ?`,
		fileID,
	).Scan(&f.ID, &f.Name, &f.Text, &f.RowCount, &f.Currency, &importedAt, &f.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import file %s: %w", fileID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import file: %w", err)
	}
	f.ImportedAt = fromMillis(importedAt)
	return f, nil
}

// ListImportFiles retrieves the files imported by ownerID, newest first. An
// empty ownerID lists every file.
func (s *SQLiteStore) ListImportFiles(ctx context.Context, ownerID string) ([]models.CSVImportFile, error) {
	query := `SELECT id, name, text, row_count, currency, imported_at, created_by FROM import_files`
	var args []any
	if ownerID != "" {
		query += " WHERE created_by = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY imported_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import files: %w", err)
	}
	defer rows.Close()

	var files []models.CSVImportFile
	for rows.Next() {
		var f models.CSVImportFile
		var importedAt sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &f.Text, &f.RowCount, &f.Currency, &importedAt, &f.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan import file: %w", err)
		}
		f.ImportedAt = fromMillis(importedAt)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import files: %w", err)
	}
	return files, nil
}

// UpdateImportFileCurrency sets the file's currency and re-tags its
// expenses in one transaction.
func (s *SQLiteStore) UpdateImportFileCurrency(ctx context.Context, fileID, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE import_files SET currency = ? WHERE id = ?", code, fileID)
	if err != nil {
		return fmt.Errorf("failed to update import file: %w", err)
	}
	if err := expectOne(res, "import file", fileID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expenses SET currency = ?, updated_at = ? WHERE import_file_id = ?",
		code, time.Now().UnixMilli(), fileID,
	)
	if err != nil {
		return fmt.Errorf("failed to re-tag imported expenses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteImportFile removes the file record only.
func (s *SQLiteStore) DeleteImportFile(ctx context.Context, fileID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM import_files WHERE id = ?", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete import file: %w", err)
	}
	return expectOne(res, "import file", fileID)
}

// GetPreferences returns the stored blob for userID, or nil.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM preferences WHERE user_id = ?", userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return data, nil
}

// PutPreferences replaces the blob for userID.
func (s *SQLiteStore) PutPreferences(ctx context.Context, userID string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
