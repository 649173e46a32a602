package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateHouseholdRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	DisplayName string `json:"display_name,omitempty" validate:"max=100"`
}

type CreateHouseholdResponse struct {
	Household *Household `json:"household"`
}

type GetHouseholdRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
}

type GetHouseholdResponse struct {
	Household *Household `json:"household"`
}

type AddMemberRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
	UserID      string `json:"user_id" validate:"required,max=100"`
	DisplayName string `json:"display_name,omitempty" validate:"max=100"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
	MemberID    string `json:"member_id" validate:"required"`
}

type RemoveMemberResponse struct{}

type CreateExpenseRequest struct {
	HouseholdID string          `json:"household_id" validate:"required"`
	Description string          `json:"description" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"money"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Category    string          `json:"category,omitempty" validate:"max=50"`
	ExpenseDate *time.Time      `json:"expense_date,omitempty"`
	Split       *Split          `json:"split" validate:"required"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseSplitsRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	Split     *Split `json:"split" validate:"required"`
}

type UpdateExpenseSplitsResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

type MarkSharePaidRequest struct {
	ShareID       string `json:"share_id" validate:"required"`
	PaymentMethod string `json:"payment_method,omitempty" validate:"max=50"`
	Notes         string `json:"notes,omitempty" validate:"max=500"`
}

type MarkSharePaidResponse struct {
	Share *Share `json:"share"`
}

type MarkShareUnpaidRequest struct {
	ShareID string `json:"share_id" validate:"required"`
}

type MarkShareUnpaidResponse struct {
	Share *Share `json:"share"`
}

// AllocationRequest applies part of a new payment to a share.
type AllocationRequest struct {
	ShareID string          `json:"share_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"money"`
}

type CreatePaymentRequest struct {
	HouseholdID  string               `json:"household_id" validate:"required"`
	PayerID      string               `json:"payer_id" validate:"required"`
	PayeeID      string               `json:"payee_id" validate:"required,nefield=PayerID"`
	Amount       decimal.Decimal      `json:"amount" validate:"money"`
	Currency     string               `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Type         string               `json:"type,omitempty" validate:"omitempty,oneof=reimbursement expense_payment adjustment"`
	Method       string               `json:"method,omitempty" validate:"max=50"`
	PaymentDate  *time.Time           `json:"payment_date,omitempty"`
	Description  string               `json:"description,omitempty" validate:"max=200"`
	Allocations  []*AllocationRequest `json:"allocations,omitempty" validate:"omitempty,dive,required"`
	AutoAllocate bool                 `json:"auto_allocate,omitempty"`
}

type CreatePaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type LinkPaymentRequest struct {
	PaymentID string          `json:"payment_id" validate:"required"`
	ShareID   string          `json:"share_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"money"`
}

type LinkPaymentResponse struct {
	Allocation *Allocation `json:"allocation"`
}

type UnlinkPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	ShareID   string `json:"share_id" validate:"required"`
}

type UnlinkPaymentResponse struct{}

type DeletePaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

type DeletePaymentResponse struct {
	// RevertedShareIDs are the shares that went back to unpaid.
	RevertedShareIDs []string `json:"reverted_share_ids"`
}

type GetPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

type GetPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type GetBalancesRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type SuggestSettlementsRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
}

type SuggestSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
