package models

import "time"

// Role is a member's role within a household.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Household is a group of people who share expenses.
type Household struct {
	// ID is the unique identifier for the household (UUID format).
	ID string

	// Name is the display name (e.g., "Flat 3B").
	Name string

	// Currency is the ISO 4217 code expenses and payments default to.
	Currency string

	// CreatedAt is when the household was created.
	CreatedAt time.Time

	State State
}

// Membership links a user to a household. Balances are computed per membership,
// not per user.
type Membership struct {
	// ID is the unique identifier for the membership (UUID format).
	ID string

	// HouseholdID is the household this membership belongs to.
	HouseholdID string

	// UserID is the identity of the user, as carried in their access token.
	UserID string

	// DisplayName is how the member is shown to the rest of the household.
	DisplayName string

	// Role decides who may manage the household and other members' records.
	Role Role

	// JoinedAt is when the user joined the household.
	JoinedAt time.Time

	State State
}

// IsAdmin reports whether the member administers the household.
func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
