package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/storage"
)

const expenseColumns = `id, amount, category, currency, group_id, paid_by_uid, paid_by_name,
	created_by, split_type, note, import_file_id, created_at, updated_at`

// SaveExpenses inserts or replaces expenses in a single transaction.
func (s *SQLiteStore) SaveExpenses(ctx context.Context, expenses []models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertExpenses(ctx, tx, expenses); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertExpenses(ctx context.Context, tx *sql.Tx, expenses []models.Expense) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare expense insert: %w", err)
	}
	defer stmt.Close()

	for i := range expenses {
		e := &expenses[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.SplitType == "" {
			e.SplitType = models.SplitEqual
		}
		_, err := stmt.ExecContext(ctx,
			e.ID, e.Amount, e.Category, e.Currency, nullable(e.GroupID),
			e.PaidByUID, e.PaidByName, e.CreatedBy, string(e.SplitType), e.Note,
			nullable(e.ImportFileID), millis(e.CreatedAt), millis(e.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense %s: %w", e.ID, err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &e, nil
}

// ListExpenses retrieves expenses matching filter, oldest first. Undated
// expenses sort last.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]models.Expense, error) {
	var (
		where []string
		args  []any
	)
	if filter.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.ImportFileID != "" {
		where = append(where, "import_file_id = ?")
		args = append(args, filter.ImportFileID)
	}

	query := "SELECT " + expenseColumns + " FROM expenses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at IS NULL, created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectOne(res, "expense", expenseID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (models.Expense, error) {
	var (
		e                    models.Expense
		splitType            string
		groupID, importFile  sql.NullString
		createdAt, updatedAt sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.Amount, &e.Category, &e.Currency, &groupID,
		&e.PaidByUID, &e.PaidByName, &e.CreatedBy, &splitType, &e.Note,
		&importFile, &createdAt, &updatedAt)
	if err != nil {
		return models.Expense{}, err
	}
	e.GroupID = groupID.String
	e.ImportFileID = importFile.String
	e.SplitType = models.ParseSplitType(splitType)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}
