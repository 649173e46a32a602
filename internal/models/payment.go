package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType describes why money moved between two members.
type PaymentType string

const (
	PaymentReimbursement  PaymentType = "reimbursement"
	PaymentExpensePayment PaymentType = "expense_payment"
	PaymentAdjustment     PaymentType = "adjustment"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentReimbursement, PaymentExpensePayment, PaymentAdjustment:
		return true
	}
	return false
}

// Payment records money moving from one member to another.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// HouseholdID is the household the payment belongs to.
	HouseholdID string

	// PayerID is the membership that sent the money.
	PayerID string

	// PayeeID is the membership that received it.
	PayeeID string

	// Amount is the payment total. Active allocations never exceed it.
	Amount decimal.Decimal

	// Currency is the ISO 4217 code of Amount.
	Currency string

	Type PaymentType

	// Method is how the money moved (e.g., "bank_transfer").
	Method string

	// PaymentDate is when the money moved.
	PaymentDate time.Time

	Description string

	// CreatedBy is the membership that recorded the payment.
	CreatedBy string

	// CreatedAt is when the payment was recorded.
	CreatedAt time.Time

	State State

	// Allocations are the active allocations of the payment.
	Allocations []Allocation
}

// AllocatedAmount returns the sum of the active allocations.
func (p *Payment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		if a.State.Active() {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// UnallocatedAmount returns how much of the payment is still free to allocate.
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedAmount())
}

// ActiveAllocationFor returns the active allocation covering shareID, if any.
func (p *Payment) ActiveAllocationFor(shareID string) (*Allocation, bool) {
	for i := range p.Allocations {
		a := &p.Allocations[i]
		if a.ShareID == shareID && a.State.Active() {
			return a, true
		}
	}
	return nil, false
}

// Allocation links a payment to the expense share it (partly) covers.
type Allocation struct {
	ID        string
	PaymentID string
	ShareID   string

	// Amount is the part of the payment applied to the share.
	Amount decimal.Decimal

	CreatedAt time.Time
	State     State
}
