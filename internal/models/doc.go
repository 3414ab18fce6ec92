// Package models defines the domain records shared by the engine, the store
// and the RPC layer.
//
// # Records
//
//   - Expense: one logged or imported cost
//   - Group: a shared-spending context with ordered members
//   - CSVImportFile: a remembered import source, independent of its expenses
//   - DashboardTile: a view window over the aggregator (range or month)
//
// # Conventions
//
//  1. Relationships are ID strings, never pointers (Expense.GroupID)
//  2. An empty GroupID means the expense is personal to its creator
//  3. Dates are time.Time in the engine's local calendar; a zero CreatedAt
//     keeps a record out of every time-based aggregate
package models
