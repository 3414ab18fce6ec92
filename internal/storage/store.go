// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/spendboard/internal/models"
)

// ErrNotFound is wrapped by every lookup or delete that targets a missing
// record.
var ErrNotFound = errors.New("not found")

// ExpenseFilter narrows ListExpenses. Empty fields match everything.
type ExpenseFilter struct {
	GroupID      string
	CreatedBy    string
	ImportFileID string
}

// Store defines the persistence operations the services need.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateGroup persists a new group. ID and CreatedAt are filled in when
	// unset.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)

	// DeleteGroup removes the group. Its expenses become personal.
	DeleteGroup(ctx context.Context, groupID string) error

	// SaveExpenses inserts the expenses in one transaction, replacing any
	// with the same ID. Missing IDs are generated.
	SaveExpenses(ctx context.Context, expenses []models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error

	CreateImportFile(ctx context.Context, file *models.CSVImportFile) error

	// SaveImport creates the file and saves its expenses atomically. Each
	// expense is linked to the file.
	SaveImport(ctx context.Context, file *models.CSVImportFile, expenses []models.Expense) error
	GetImportFile(ctx context.Context, fileID string) (*models.CSVImportFile, error)
	ListImportFiles(ctx context.Context, ownerID string) ([]models.CSVImportFile, error)

	// UpdateImportFileCurrency changes the file's currency and re-tags the
	// expenses imported from it.
	UpdateImportFileCurrency(ctx context.Context, fileID, code string) error

	// DeleteImportFile forgets the file. Expenses it produced are kept.
	DeleteImportFile(ctx context.Context, fileID string) error

	// GetPreferences returns the raw preference blob for a user, or nil
	// when none was saved.
	GetPreferences(ctx context.Context, userID string) ([]byte, error)
	PutPreferences(ctx context.Context, userID string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}
