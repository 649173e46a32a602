// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/hearthledger/internal/models"
)

// Store runs units of work against a storage backend.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the engine.
type Store interface {
	// WithTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back on any error, which is returned unchanged.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the repository view of one transaction.
//
// Reads never return entities in the deleted state: a Get of a deleted entity
// fails with an apperr KindNotFound error, exactly like a missing one. Nested
// collections (Expense.Shares, Payment.Allocations) hold active rows only.
//
// Create methods assign an ID and creation time when those are empty.
type Tx interface {
	CreateHousehold(ctx context.Context, h *models.Household) error
	GetHousehold(ctx context.Context, id string) (*models.Household, error)

	CreateMembership(ctx context.Context, m *models.Membership) error
	GetMembership(ctx context.Context, id string) (*models.Membership, error)
	// GetMembershipByUser finds the active membership of userID in a household.
	GetMembershipByUser(ctx context.Context, householdID, userID string) (*models.Membership, error)
	ListMemberships(ctx context.Context, householdID string) ([]*models.Membership, error)
	UpdateMembership(ctx context.Context, m *models.Membership) error

	// CreateExpense inserts the expense together with its shares.
	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	// ListExpenses returns the household's expenses, oldest expense date first.
	ListExpenses(ctx context.Context, householdID string) ([]*models.Expense, error)
	// UpdateExpense writes the expense row. Shares are not touched.
	UpdateExpense(ctx context.Context, e *models.Expense) error

	// AddShares inserts new shares for an existing expense, in order.
	AddShares(ctx context.Context, expenseID string, shares []models.ExpenseShare) error
	// GetShare reads a share and locks it until the transaction ends on
	// backends with row locks.
	GetShare(ctx context.Context, id string) (*models.ExpenseShare, error)
	UpdateShare(ctx context.Context, s *models.ExpenseShare) error
	ListSharesByMembership(ctx context.Context, membershipID string) ([]*models.ExpenseShare, error)

	// CreatePayment inserts the payment. Allocations are added separately.
	CreatePayment(ctx context.Context, p *models.Payment) error
	// GetPayment reads a payment with its allocations and locks it until the
	// transaction ends on backends with row locks.
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	// ListPayments returns the household's payments, newest payment date first.
	ListPayments(ctx context.Context, householdID string) ([]*models.Payment, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error

	CreateAllocation(ctx context.Context, a *models.Allocation) error
	UpdateAllocation(ctx context.Context, a *models.Allocation) error
	// ListAllocationsByShare returns the active allocations covering a share.
	ListAllocationsByShare(ctx context.Context, shareID string) ([]*models.Allocation, error)
}
