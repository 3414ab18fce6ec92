package service

import "google.golang.org/protobuf/types/known/timestamppb"

// Expense is the wire form of models.Expense.
type Expense struct {
	ID           string                 `json:"id,omitempty"`
	Amount       float64                `json:"amount"`
	Display      string                 `json:"display,omitempty"`
	Category     string                 `json:"category"`
	Currency     string                 `json:"currency,omitempty"`
	GroupID      string                 `json:"groupId,omitempty"`
	PaidByUID    string                 `json:"paidByUid,omitempty"`
	PaidByName   string                 `json:"paidByName,omitempty"`
	CreatedBy    string                 `json:"createdBy,omitempty"`
	SplitType    string                 `json:"splitType,omitempty"`
	Note         string                 `json:"note,omitempty"`
	ImportFileID string                 `json:"importFileId,omitempty"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt,omitempty"`
	UpdatedAt    *timestamppb.Timestamp `json:"updatedAt,omitempty"`
}

type Member struct {
	UID   string `json:"uid,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Group struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Type          string                 `json:"type,omitempty"`
	Currency      string                 `json:"currency,omitempty"`
	Members       []Member               `json:"members,omitempty"`
	MembersCount  int                    `json:"membersCount,omitempty"`
	MembersTarget int                    `json:"membersTarget,omitempty"`
	CreatedAt     *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type ImportFile struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	RowCount   int                    `json:"rowCount"`
	Currency   string                 `json:"currency"`
	ImportedAt *timestamppb.Timestamp `json:"importedAt,omitempty"`
}

type Balance struct {
	MemberID  string  `json:"memberId"`
	Name      string  `json:"name"`
	Net       float64 `json:"net"`
	TotalPaid float64 `json:"totalPaid"`
	TotalOwed float64 `json:"totalOwed"`
}

type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type Bucket struct {
	Key         string             `json:"key"`
	Label       string             `json:"label"`
	Amount      float64            `json:"amount"`
	PerCategory map[string]float64 `json:"perCategory"`
}

type MonthRow struct {
	Day         int                `json:"day"`
	Weekday     string             `json:"weekday"`
	PerCategory map[string]float64 `json:"perCategory"`
	Total       float64            `json:"total"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Share    float64 `json:"share"`
}

type ActivityEntry struct {
	Expense   Expense                `json:"expense"`
	GroupName string                 `json:"groupName,omitempty"`
	When      *timestamppb.Timestamp `json:"when"`
}

type Tile struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Size     string `json:"size,omitempty"`
	Kind     string `json:"kind"`
	RangeKey string `json:"rangeKey,omitempty"`
	MonthKey string `json:"monthKey,omitempty"`
}

// LedgerService messages.

type ImportCSVRequest struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Currency string `json:"currency,omitempty"`
}

type ImportCSVResponse struct {
	File     ImportFile `json:"file"`
	Schema   string     `json:"schema"`
	Imported int        `json:"imported"`
}

type AddExpenseRequest struct {
	Expense Expense `json:"expense"`
}

type AddExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// UpdateExpenseRequest changes only the fields that are set.
type UpdateExpenseRequest struct {
	ID         string                 `json:"id"`
	Amount     *float64               `json:"amount,omitempty"`
	Category   *string                `json:"category,omitempty"`
	Currency   *string                `json:"currency,omitempty"`
	PaidByUID  *string                `json:"paidByUid,omitempty"`
	PaidByName *string                `json:"paidByName,omitempty"`
	SplitType  *string                `json:"splitType,omitempty"`
	CreatedAt  *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId,omitempty"`
	Mine    bool   `json:"mine,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
	Currency string    `json:"currency"`
}

type DeleteExpenseRequest struct {
	ID string `json:"id"`
}

type DeleteExpenseResponse struct{}

type GroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GroupBalancesResponse struct {
	Balances    []Balance    `json:"balances"`
	Settlements []Settlement `json:"settlements"`
	Currency    string       `json:"currency"`
}

type OverallBalancesRequest struct{}

type OverallBalancesResponse struct {
	Balances []Balance `json:"balances"`
	Currency string    `json:"currency"`
}

type RangeSeriesRequest struct {
	RangeKey string `json:"rangeKey"`
	Mine     bool   `json:"mine,omitempty"`
}

type RangeSeriesResponse struct {
	Buckets  []Bucket `json:"buckets"`
	Currency string   `json:"currency"`
}

type MonthTableRequest struct {
	MonthKey string `json:"monthKey,omitempty"`
	Mine     bool   `json:"mine,omitempty"`
}

type MonthTableResponse struct {
	MonthKey     string             `json:"monthKey"`
	MonthLabel   string             `json:"monthLabel"`
	Categories   []string           `json:"categories"`
	Rows         []MonthRow         `json:"rows"`
	ColumnTotals map[string]float64 `json:"columnTotals"`
	GrandTotal   float64            `json:"grandTotal"`
	Currency     string             `json:"currency"`
}

type CategoryBreakdownRequest struct {
	From *timestamppb.Timestamp `json:"from,omitempty"`
	To   *timestamppb.Timestamp `json:"to,omitempty"`
	Mine bool                   `json:"mine,omitempty"`
}

type CategoryBreakdownResponse struct {
	Categories []CategoryTotal `json:"categories"`
	Currency   string          `json:"currency"`
}

type ActivityRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ActivityResponse struct {
	Entries []ActivityEntry `json:"entries"`
}

type ResolveCurrencyRequest struct {
	GroupID string `json:"groupId,omitempty"`
	Mine    bool   `json:"mine,omitempty"`
}

type ResolveCurrencyResponse struct {
	Currency string `json:"currency"`
	// Total is zero when Currency is MIXED; use Totals instead.
	Total   float64            `json:"total"`
	Totals  map[string]float64 `json:"totals,omitempty"`
	Display string             `json:"display"`
}

// GroupService messages.

type CreateGroupRequest struct {
	Name          string   `json:"name"`
	Type          string   `json:"type,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Members       []Member `json:"members,omitempty"`
	MembersCount  int      `json:"membersCount,omitempty"`
	MembersTarget int      `json:"membersTarget,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// ImportFileService messages.

type ListFilesRequest struct {
	Mine bool `json:"mine,omitempty"`
}

type ListFilesResponse struct {
	Files []ImportFile `json:"files"`
}

type UpdateFileCurrencyRequest struct {
	FileID   string `json:"fileId"`
	Currency string `json:"currency"`
}

type UpdateFileCurrencyResponse struct {
	File ImportFile `json:"file"`
}

type DeleteFileRequest struct {
	FileID string `json:"fileId"`
}

type DeleteFileResponse struct{}

// PreferenceService messages.

type GetTilesRequest struct{}

type GetTilesResponse struct {
	Tiles []Tile `json:"tiles"`
}

type SaveTilesRequest struct {
	Tiles []Tile `json:"tiles"`
}

type SaveTilesResponse struct {
	Tiles []Tile `json:"tiles"`
}

type ExportPreferencesRequest struct{}

// ExportPreferencesResponse carries the caller's preference blob: imported
// expenses, remembered files and tiles.
type ExportPreferencesResponse struct {
	Data string `json:"data"`
}

type RestorePreferencesRequest struct {
	Data string `json:"data"`
}

type RestorePreferencesResponse struct {
	Expenses int `json:"expenses"`
	Skipped  int `json:"skipped,omitempty"`
	Files    int `json:"files"`
	Tiles    int `json:"tiles"`
}
