// Package models defines the core domain models for hearthledger.
//
// # Entities
//
//   - Household: a group of people sharing costs, with a default currency
//   - Membership: a user's membership in one household (admin or member)
//   - Expense: a shared cost recorded by one member, split into shares
//   - ExpenseShare: one member's portion of an expense, paid or unpaid
//   - Payment: money moved between two members of a household
//   - Allocation: the part of a payment that covers a specific share
//
// # Lifecycle
//
// Nothing is hard-deleted. Every entity carries a State; removing an entity moves
// it to StateDeleted and the storage layer hides deleted rows from every read.
//
// # Money
//
// Amounts are shopspring/decimal values with two decimal places. Binary floating
// point is never used for money.
//
// # Relationships
//
// Relationships are ID strings rather than pointers. An Expense owns its Shares and a
// Payment owns its Allocations; an Allocation references a Share it does not own.
package models
