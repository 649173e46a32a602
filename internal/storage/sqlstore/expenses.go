package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/hearthledger/internal/models"
)

const expenseColumns = "id, household_id, created_by, description, amount, currency, category, split_method, expense_date, created_at, state"

const shareColumns = "s.id, s.expense_id, s.membership_id, s.amount, s.percentage, s.paid, s.paid_at, s.payment_method, s.notes, s.state"

// CreateExpense persists a new expense and its shares.
func (t *txn) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = orNow(e.CreatedAt)
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = e.CreatedAt
	}
	if e.State == "" {
		e.State = models.StateActive
	}

	_, err := t.exec(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.HouseholdID, e.CreatedBy, e.Description, e.Amount, e.Currency, e.Category,
		e.Method, unix(e.ExpenseDate), unix(e.CreatedAt), e.State,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return t.insertShares(ctx, e.ID, e.Shares)
}

// AddShares inserts shares for an existing expense.
func (t *txn) AddShares(ctx context.Context, expenseID string, shares []models.ExpenseShare) error {
	return t.insertShares(ctx, expenseID, shares)
}

func (t *txn) insertShares(ctx context.Context, expenseID string, shares []models.ExpenseShare) error {
	for i := range shares {
		s := &shares[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		s.ExpenseID = expenseID
		if s.State == "" {
			s.State = models.StateActive
		}

		_, err := t.exec(ctx,
			`INSERT INTO expense_shares (id, expense_id, membership_id, position, amount, percentage, paid, paid_at, payment_method, notes, state)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, expenseID, s.MembershipID, i, s.Amount, s.Percentage, s.Paid, nullUnix(s.PaidAt),
			s.PaymentMethod, s.Notes, s.State,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{}
	var expenseDate, createdAt int64
	err := row.Scan(&e.ID, &e.HouseholdID, &e.CreatedBy, &e.Description, &e.Amount, &e.Currency,
		&e.Category, &e.Method, &expenseDate, &createdAt, &e.State)
	if err != nil {
		return nil, err
	}
	e.ExpenseDate = fromUnix(expenseDate)
	e.CreatedAt = fromUnix(createdAt)
	return e, nil
}

func scanShare(row interface{ Scan(...any) error }) (*models.ExpenseShare, error) {
	s := &models.ExpenseShare{}
	var paidAt sql.NullInt64
	err := row.Scan(&s.ID, &s.ExpenseID, &s.MembershipID, &s.Amount, &s.Percentage, &s.Paid, &paidAt,
		&s.PaymentMethod, &s.Notes, &s.State)
	if err != nil {
		return nil, err
	}
	s.PaidAt = fromNullUnix(paidAt)
	return s, nil
}

// GetExpense retrieves an active expense with its active shares.
func (t *txn) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	e, err := scanExpense(t.queryRow(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND "+activeClause(""),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	shares, err := t.listShares(ctx, "s.expense_id = ?", id)
	if err != nil {
		return nil, err
	}
	for _, s := range shares {
		e.Shares = append(e.Shares, *s)
	}
	return e, nil
}

// ListExpenses retrieves the active expenses of a household with their shares.
func (t *txn) ListExpenses(ctx context.Context, householdID string) ([]*models.Expense, error) {
	rows, err := t.query(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE household_id = ? AND "+activeClause("")+
			" ORDER BY expense_date, created_at, id",
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Shares are read after the expense cursor is closed; lib/pq cannot
	// interleave result sets on one connection.
	shares, err := t.listShares(ctx,
		"s.expense_id IN (SELECT id FROM expenses WHERE household_id = ? AND "+activeClause("")+")",
		householdID,
	)
	if err != nil {
		return nil, err
	}
	for _, s := range shares {
		if e, ok := byID[s.ExpenseID]; ok {
			e.Shares = append(e.Shares, *s)
		}
	}
	return expenses, nil
}

func (t *txn) listShares(ctx context.Context, where string, args ...any) ([]*models.ExpenseShare, error) {
	rows, err := t.query(ctx,
		"SELECT "+shareColumns+" FROM expense_shares s WHERE "+where+" AND "+activeClause("s")+
			" ORDER BY s.expense_id, s.position, s.id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense shares: %w", err)
	}
	defer rows.Close()

	var shares []*models.ExpenseShare
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return shares, nil
}

// UpdateExpense writes the mutable expense fields.
func (t *txn) UpdateExpense(ctx context.Context, e *models.Expense) error {
	return t.execOne(ctx, "expense", e.ID,
		`UPDATE expenses SET description = ?, amount = ?, category = ?, split_method = ?, expense_date = ?, state = ?
		 WHERE id = ? AND `+activeClause(""),
		e.Description, e.Amount, e.Category, e.Method, unix(e.ExpenseDate), e.State, e.ID,
	)
}

// GetShare retrieves an active share, locking its row where supported.
func (t *txn) GetShare(ctx context.Context, id string) (*models.ExpenseShare, error) {
	s, err := scanShare(t.queryRow(ctx,
		t.d.forUpdate("SELECT "+shareColumns+" FROM expense_shares s WHERE s.id = ? AND "+activeClause("s")),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense share", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense share: %w", err)
	}
	return s, nil
}

// UpdateShare writes the paid status and state of a share.
func (t *txn) UpdateShare(ctx context.Context, s *models.ExpenseShare) error {
	return t.execOne(ctx, "expense share", s.ID,
		`UPDATE expense_shares SET paid = ?, paid_at = ?, payment_method = ?, notes = ?, state = ?
		 WHERE id = ? AND `+activeClause(""),
		s.Paid, nullUnix(s.PaidAt), s.PaymentMethod, s.Notes, s.State, s.ID,
	)
}

// ListSharesByMembership retrieves the active shares owed by a member.
func (t *txn) ListSharesByMembership(ctx context.Context, membershipID string) ([]*models.ExpenseShare, error) {
	return t.listShares(ctx, "s.membership_id = ?", membershipID)
}
