package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/models"
)

func notFound(what, id string) error {
	return apperr.NotFound(what, id)
}

// CreateHousehold persists a new household.
func (t *txn) CreateHousehold(ctx context.Context, h *models.Household) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	h.CreatedAt = orNow(h.CreatedAt)
	if h.State == "" {
		h.State = models.StateActive
	}

	_, err := t.exec(ctx,
		"INSERT INTO households (id, name, currency, created_at, state) VALUES (?, ?, ?, ?, ?)",
		h.ID, h.Name, h.Currency, unix(h.CreatedAt), h.State,
	)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

// GetHousehold retrieves an active household by ID.
func (t *txn) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	h := &models.Household{}
	var createdAt int64
	err := t.queryRow(ctx,
		"SELECT id, name, currency, created_at, state FROM households WHERE id = ? AND "+activeClause(""),
		id,
	).Scan(&h.ID, &h.Name, &h.Currency, &createdAt, &h.State)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("household", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	h.CreatedAt = fromUnix(createdAt)
	return h, nil
}

// CreateMembership persists a new membership.
func (t *txn) CreateMembership(ctx context.Context, m *models.Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.JoinedAt = orNow(m.JoinedAt)
	if m.State == "" {
		m.State = models.StateActive
	}

	_, err := t.exec(ctx,
		`INSERT INTO memberships (id, household_id, user_id, display_name, role, joined_at, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.HouseholdID, m.UserID, m.DisplayName, m.Role, unix(m.JoinedAt), m.State,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

const membershipColumns = "id, household_id, user_id, display_name, role, joined_at, state"

func scanMembership(row interface{ Scan(...any) error }) (*models.Membership, error) {
	m := &models.Membership{}
	var joinedAt int64
	if err := row.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.DisplayName, &m.Role, &joinedAt, &m.State); err != nil {
		return nil, err
	}
	m.JoinedAt = fromUnix(joinedAt)
	return m, nil
}

// GetMembership retrieves an active membership by ID.
func (t *txn) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	m, err := scanMembership(t.queryRow(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE id = ? AND "+activeClause(""),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// GetMembershipByUser retrieves the active membership of a user in a household.
func (t *txn) GetMembershipByUser(ctx context.Context, householdID, userID string) (*models.Membership, error) {
	m, err := scanMembership(t.queryRow(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE household_id = ? AND user_id = ? AND "+activeClause(""),
		householdID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// ListMemberships retrieves the active members of a household in join order.
func (t *txn) ListMemberships(ctx context.Context, householdID string) ([]*models.Membership, error) {
	rows, err := t.query(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE household_id = ? AND "+activeClause("")+
			" ORDER BY joined_at, id",
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return members, nil
}

// UpdateMembership writes the mutable membership fields.
func (t *txn) UpdateMembership(ctx context.Context, m *models.Membership) error {
	return t.execOne(ctx, "membership", m.ID,
		"UPDATE memberships SET display_name = ?, role = ?, state = ? WHERE id = ? AND "+activeClause(""),
		m.DisplayName, m.Role, m.State, m.ID,
	)
}
