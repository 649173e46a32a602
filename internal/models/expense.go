package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitMethod is how an expense is divided among members.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitCustom     SplitMethod = "custom"
)

// Valid reports whether m is a known split method.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitPercentage, SplitCustom:
		return true
	}
	return false
}

// Expense is a shared cost paid by one member and split among several.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// HouseholdID is the household the expense belongs to.
	HouseholdID string

	// CreatedBy is the membership that recorded (and paid) the expense.
	// Unpaid shares of other members are owed to this member.
	CreatedBy string

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total cost. The active shares are expected to sum to it.
	Amount decimal.Decimal

	// Currency is the ISO 4217 code of Amount.
	Currency string

	// Category is a free-form grouping label (e.g., "utilities").
	Category string

	// Method is the split method used for the current shares.
	Method SplitMethod

	// ExpenseDate is when the cost was incurred.
	ExpenseDate time.Time

	// CreatedAt is when the expense was recorded.
	CreatedAt time.Time

	State State

	// Shares are the active shares of the expense, in creation order.
	Shares []ExpenseShare
}

// ShareTotal returns the sum of the active share amounts.
func (e *Expense) ShareTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Shares {
		if s.State.Active() {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// ExpenseShare is one member's portion of an expense.
type ExpenseShare struct {
	// ID is the unique identifier for the share (UUID format).
	ID string

	// ExpenseID is the owning expense.
	ExpenseID string

	// MembershipID is the member who owes this share.
	MembershipID string

	// Amount is what the member owes for the expense.
	Amount decimal.Decimal

	// Percentage is set for percentage splits only.
	Percentage decimal.NullDecimal

	// Paid is true once the share has been settled, directly or by payments.
	Paid bool

	// PaidAt is when the share was marked paid; nil while unpaid.
	PaidAt *time.Time

	// PaymentMethod is how the share was settled (e.g., "cash"), if known.
	PaymentMethod string

	// Notes is a free-form remark recorded when the share was settled.
	Notes string

	State State
}
