// Package ledger tracks the paid status of expense shares and decides who may
// change it.
package ledger

import (
	"errors"
	"time"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/models"
)

var (
	// ErrAlreadyPaid is returned when marking a paid share as paid.
	ErrAlreadyPaid = errors.New("share is already paid")

	// ErrAlreadyUnpaid is returned when marking an unpaid share as unpaid.
	ErrAlreadyUnpaid = errors.New("share is already unpaid")
)

// MarkPaid flags share as paid at the given time, recording how it was paid.
func MarkPaid(share *models.ExpenseShare, method, notes string, at time.Time) error {
	if share.Paid {
		return apperr.Wrap(apperr.KindState, ErrAlreadyPaid, "share %s is already paid", share.ID)
	}
	paidAt := at.UTC()
	share.Paid = true
	share.PaidAt = &paidAt
	share.PaymentMethod = method
	share.Notes = notes
	return nil
}

// MarkUnpaid reverts share to unpaid and clears its payment details.
func MarkUnpaid(share *models.ExpenseShare) error {
	if !share.Paid {
		return apperr.Wrap(apperr.KindState, ErrAlreadyUnpaid, "share %s is already unpaid", share.ID)
	}
	share.Paid = false
	share.PaidAt = nil
	share.PaymentMethod = ""
	share.Notes = ""
	return nil
}

// CanMarkPaid reports whether actor may mark shares of expense as paid: the
// expense creator or a household admin.
func CanMarkPaid(actor *models.Membership, expense *models.Expense) bool {
	if actor == nil || actor.HouseholdID != expense.HouseholdID {
		return false
	}
	return actor.ID == expense.CreatedBy || actor.IsAdmin()
}

// CanMarkUnpaid reports whether actor may revert share to unpaid. The share
// owner may undo their own payment in addition to those allowed by CanMarkPaid.
func CanMarkUnpaid(actor *models.Membership, expense *models.Expense, share *models.ExpenseShare) bool {
	if CanMarkPaid(actor, expense) {
		return true
	}
	return actor != nil && actor.HouseholdID == expense.HouseholdID && actor.ID == share.MembershipID
}

// CanManagePayment reports whether actor may link, unlink or delete payment.
func CanManagePayment(actor *models.Membership, payment *models.Payment) bool {
	if actor == nil || actor.HouseholdID != payment.HouseholdID {
		return false
	}
	return actor.ID == payment.PayerID || actor.ID == payment.PayeeID || actor.IsAdmin()
}

// CanEditExpense reports whether actor may change or delete expense.
func CanEditExpense(actor *models.Membership, expense *models.Expense) bool {
	return CanMarkPaid(actor, expense)
}
