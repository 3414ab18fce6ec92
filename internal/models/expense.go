package models

import "time"

// SplitType records how an expense is meant to be divided.
type SplitType string

const (
	SplitEqual    SplitType = "equal"
	SplitExact    SplitType = "exact"
	SplitWeighted SplitType = "weighted"
)

// ParseSplitType maps free text to a SplitType, defaulting to equal.
func ParseSplitType(s string) SplitType {
	switch SplitType(s) {
	case SplitExact, SplitWeighted:
		return SplitType(s)
	default:
		return SplitEqual
	}
}

// Expense represents one logged or imported cost.
type Expense struct {
	// ID is stable for the record's lifetime.
	ID string

	// Amount is the non-negative value of the expense.
	Amount float64

	// Category is one of the configured categories or Miscellaneous.
	Category string

	// Currency is a 3-letter code.
	Currency string

	// GroupID references a Group. Empty means personal.
	GroupID string

	// PaidByUID is authoritative for who paid; PaidByName is a display fallback.
	PaidByUID  string
	PaidByName string

	// CreatedBy identifies the owner. "My expenses" filters on it.
	CreatedBy string

	// SplitType is recorded but only equal splits are computed.
	SplitType SplitType

	// Note carries free text (descriptions, pivot cell annotations).
	Note string

	// ImportFileID links an imported record to its CSVImportFile.
	ImportFileID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payer returns the identifier credited for this expense: PaidByUID, or
// CreatedBy when the payer is unknown.
func (e Expense) Payer() string {
	if e.PaidByUID != "" {
		return e.PaidByUID
	}
	return e.CreatedBy
}

// Dated reports whether the expense can take part in time-based aggregates.
func (e Expense) Dated() bool {
	return !e.CreatedAt.IsZero()
}

// ExpenseUpdate carries the mutable fields of an expense. Nil fields are
// left unchanged.
type ExpenseUpdate struct {
	Amount     *float64
	Category   *string
	Currency   *string
	CreatedAt  *time.Time
	PaidByUID  *string
	PaidByName *string
	SplitType  *SplitType
}

// Apply returns a copy of e with the update's non-nil fields replaced.
func (u ExpenseUpdate) Apply(e Expense, now time.Time) Expense {
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.Currency != nil {
		e.Currency = *u.Currency
	}
	if u.CreatedAt != nil {
		e.CreatedAt = *u.CreatedAt
	}
	if u.PaidByUID != nil {
		e.PaidByUID = *u.PaidByUID
	}
	if u.PaidByName != nil {
		e.PaidByName = *u.PaidByName
	}
	if u.SplitType != nil {
		e.SplitType = *u.SplitType
	}
	e.UpdatedAt = now
	return e
}
