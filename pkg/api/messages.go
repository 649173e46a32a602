package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Household is a household and its active members.
type Household struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	Members   []*Member `json:"members"`
}

// Member is one membership of a household.
type Member struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Expense is a shared cost with its shares.
type Expense struct {
	ID          string          `json:"id"`
	HouseholdID string          `json:"household_id"`
	CreatedBy   string          `json:"created_by"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category,omitempty"`
	SplitMethod string          `json:"split_method"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
	Shares      []*Share        `json:"shares"`
}

// Share is one member's portion of an expense.
type Share struct {
	ID            string           `json:"id"`
	ExpenseID     string           `json:"expense_id"`
	MemberID      string           `json:"member_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	Paid          bool             `json:"paid"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// Payment is money moved between two members.
type Payment struct {
	ID                string          `json:"id"`
	HouseholdID       string          `json:"household_id"`
	PayerID           string          `json:"payer_id"`
	PayeeID           string          `json:"payee_id"`
	Amount            decimal.Decimal `json:"amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
	Currency          string          `json:"currency"`
	Type              string          `json:"type"`
	Method            string          `json:"method,omitempty"`
	PaymentDate       time.Time       `json:"payment_date"`
	Description       string          `json:"description,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	Allocations       []*Allocation   `json:"allocations"`
}

// Allocation is the part of a payment applied to a share.
type Allocation struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	ShareID   string          `json:"share_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Balance is a member's position within a household.
type Balance struct {
	MemberID string          `json:"member_id"`
	Owed     decimal.Decimal `json:"owed"`
	OwedTo   decimal.Decimal `json:"owed_to"`
	Net      decimal.Decimal `json:"net"`
}

// Settlement is a suggested transfer.
type Settlement struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// SplitPortion is a member's percentage or amount in a split request.
type SplitPortion struct {
	MemberID string          `json:"member_id" validate:"required"`
	Value    decimal.Decimal `json:"value"`
}

// Split describes how to divide an expense. Equal splits list members;
// percentage and custom splits list portions.
type Split struct {
	Method   string          `json:"method" validate:"required,oneof=equal percentage custom"`
	Members  []string        `json:"members,omitempty" validate:"omitempty,dive,required"`
	Portions []*SplitPortion `json:"portions,omitempty" validate:"omitempty,dive,required"`
}
