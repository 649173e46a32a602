package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/hearthledger/internal/models"
)

const paymentColumns = "id, household_id, payer_id, payee_id, amount, currency, payment_type, method, payment_date, description, created_by, created_at, state"

const allocationColumns = "id, payment_id, share_id, amount, created_at, state"

// CreatePayment persists a new payment.
func (t *txn) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = orNow(p.CreatedAt)
	if p.PaymentDate.IsZero() {
		p.PaymentDate = p.CreatedAt
	}
	if p.State == "" {
		p.State = models.StateActive
	}

	_, err := t.exec(ctx,
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.HouseholdID, p.PayerID, p.PayeeID, p.Amount, p.Currency, p.Type, p.Method,
		unix(p.PaymentDate), p.Description, p.CreatedBy, unix(p.CreatedAt), p.State,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var paymentDate, createdAt int64
	err := row.Scan(&p.ID, &p.HouseholdID, &p.PayerID, &p.PayeeID, &p.Amount, &p.Currency, &p.Type,
		&p.Method, &paymentDate, &p.Description, &p.CreatedBy, &createdAt, &p.State)
	if err != nil {
		return nil, err
	}
	p.PaymentDate = fromUnix(paymentDate)
	p.CreatedAt = fromUnix(createdAt)
	return p, nil
}

func scanAllocation(row interface{ Scan(...any) error }) (*models.Allocation, error) {
	a := &models.Allocation{}
	var createdAt int64
	if err := row.Scan(&a.ID, &a.PaymentID, &a.ShareID, &a.Amount, &createdAt, &a.State); err != nil {
		return nil, err
	}
	a.CreatedAt = fromUnix(createdAt)
	return a, nil
}

// GetPayment retrieves an active payment with its active allocations, locking
// the payment row where supported.
func (t *txn) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p, err := scanPayment(t.queryRow(ctx,
		t.d.forUpdate("SELECT "+paymentColumns+" FROM payments WHERE id = ? AND "+activeClause("")),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	allocations, err := t.listAllocations(ctx, "payment_id = ?", id)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		p.Allocations = append(p.Allocations, *a)
	}
	return p, nil
}

// ListPayments retrieves the active payments of a household with their allocations.
func (t *txn) ListPayments(ctx context.Context, householdID string) ([]*models.Payment, error) {
	rows, err := t.query(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE household_id = ? AND "+activeClause("")+
			" ORDER BY payment_date DESC, created_at DESC, id",
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	var payments []*models.Payment
	byID := make(map[string]*models.Payment)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
		byID[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	allocations, err := t.listAllocations(ctx,
		"payment_id IN (SELECT id FROM payments WHERE household_id = ? AND "+activeClause("")+")",
		householdID,
	)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		if p, ok := byID[a.PaymentID]; ok {
			p.Allocations = append(p.Allocations, *a)
		}
	}
	return payments, nil
}

// UpdatePayment writes the mutable payment fields.
func (t *txn) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return t.execOne(ctx, "payment", p.ID,
		`UPDATE payments SET method = ?, description = ?, state = ? WHERE id = ? AND `+activeClause(""),
		p.Method, p.Description, p.State, p.ID,
	)
}

// CreateAllocation persists a new payment allocation.
func (t *txn) CreateAllocation(ctx context.Context, a *models.Allocation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = orNow(a.CreatedAt)
	if a.State == "" {
		a.State = models.StateActive
	}

	_, err := t.exec(ctx,
		"INSERT INTO payment_allocations ("+allocationColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.PaymentID, a.ShareID, a.Amount, unix(a.CreatedAt), a.State,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment allocation: %w", err)
	}
	return nil
}

// UpdateAllocation writes the state of an allocation.
func (t *txn) UpdateAllocation(ctx context.Context, a *models.Allocation) error {
	return t.execOne(ctx, "payment allocation", a.ID,
		"UPDATE payment_allocations SET state = ? WHERE id = ? AND "+activeClause(""),
		a.State, a.ID,
	)
}

// ListAllocationsByShare retrieves the active allocations covering a share.
func (t *txn) ListAllocationsByShare(ctx context.Context, shareID string) ([]*models.Allocation, error) {
	return t.listAllocations(ctx, "share_id = ?", shareID)
}

func (t *txn) listAllocations(ctx context.Context, where string, args ...any) ([]*models.Allocation, error) {
	rows, err := t.query(ctx,
		"SELECT "+allocationColumns+" FROM payment_allocations WHERE "+where+" AND "+activeClause("")+
			" ORDER BY created_at, id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment allocations: %w", err)
	}
	defer rows.Close()

	var allocations []*models.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment allocations: %w", err)
	}
	return allocations, nil
}
