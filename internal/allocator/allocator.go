// Package allocator links payments to the expense shares they cover.
//
// Every function works inside a caller-provided storage transaction and keeps
// two invariants: the active allocations of a payment never exceed its amount,
// and the active allocations of a share never exceed the share amount.
package allocator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/ledger"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// UnlinkPolicy decides what happens to a paid share when one of its
// allocations is removed without deleting the payment.
type UnlinkPolicy string

const (
	// UnlinkKeep leaves the paid status alone.
	UnlinkKeep UnlinkPolicy = "keep"
	// UnlinkRevert reverts the share to unpaid when no other active
	// allocation backs it.
	UnlinkRevert UnlinkPolicy = "revert"
)

// ParseUnlinkPolicy parses a configured policy name. Empty means UnlinkKeep.
func ParseUnlinkPolicy(s string) (UnlinkPolicy, error) {
	switch UnlinkPolicy(s) {
	case "", UnlinkKeep:
		return UnlinkKeep, nil
	case UnlinkRevert:
		return UnlinkRevert, nil
	}
	return "", fmt.Errorf("unknown unlink policy: %q", s)
}

// Allocator applies payments to shares.
type Allocator struct {
	policy UnlinkPolicy
	now    func() time.Time
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithUnlinkPolicy sets the unlink policy.
func WithUnlinkPolicy(p UnlinkPolicy) Option {
	return func(a *Allocator) { a.policy = p }
}

// WithClock sets the time source used for paid timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// New creates an Allocator. The default policy is UnlinkKeep.
func New(opts ...Option) *Allocator {
	a := &Allocator{policy: UnlinkKeep, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the configured unlink policy.
func (a *Allocator) Policy() UnlinkPolicy {
	return a.policy
}

// Link allocates amount of payment to share. The share is marked paid once its
// active allocations cover it. payment.Allocations and share are updated in
// place.
func (a *Allocator) Link(ctx context.Context, tx storage.Tx, payment *models.Payment, share *models.ExpenseShare, amount decimal.Decimal) (*models.Allocation, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validation("allocation amount must be positive, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, apperr.Validation("allocation amount %s has more than 2 decimal places", amount)
	}
	if amount.GreaterThan(share.Amount) {
		return nil, apperr.Validation("allocation amount %s exceeds share amount %s", amount, share.Amount)
	}

	expense, err := tx.GetExpense(ctx, share.ExpenseID)
	if err != nil {
		return nil, err
	}
	if expense.HouseholdID != payment.HouseholdID {
		return nil, apperr.Validation("payment %s and share %s belong to different households", payment.ID, share.ID)
	}
	if expense.Currency != payment.Currency {
		return nil, apperr.Validation("payment currency %s does not match expense currency %s", payment.Currency, expense.Currency)
	}

	if _, ok := payment.ActiveAllocationFor(share.ID); ok {
		return nil, apperr.State("payment %s already covers share %s", payment.ID, share.ID)
	}
	if unallocated := payment.UnallocatedAmount(); amount.GreaterThan(unallocated) {
		return nil, apperr.State("allocation amount %s exceeds unallocated payment amount %s", amount, unallocated)
	}

	covered, err := coverage(ctx, tx, share.ID, "")
	if err != nil {
		return nil, err
	}
	if outstanding := share.Amount.Sub(covered); amount.GreaterThan(outstanding) {
		return nil, apperr.State("allocation amount %s exceeds outstanding share amount %s", amount, outstanding)
	}

	alloc := &models.Allocation{
		PaymentID: payment.ID,
		ShareID:   share.ID,
		Amount:    amount,
		CreatedAt: a.now().UTC(),
	}
	if err := tx.CreateAllocation(ctx, alloc); err != nil {
		return nil, err
	}
	payment.Allocations = append(payment.Allocations, *alloc)

	if !share.Paid && covered.Add(amount).GreaterThanOrEqual(share.Amount) {
		if err := ledger.MarkPaid(share, payment.Method, "", a.now()); err != nil {
			return nil, err
		}
		if err := tx.UpdateShare(ctx, share); err != nil {
			return nil, err
		}
	}
	return alloc, nil
}

// Unlink deactivates the allocation of payment on share. Under UnlinkRevert a
// paid share left without any active allocation is reverted to unpaid.
func (a *Allocator) Unlink(ctx context.Context, tx storage.Tx, payment *models.Payment, share *models.ExpenseShare) (*models.Allocation, error) {
	alloc, ok := payment.ActiveAllocationFor(share.ID)
	if !ok {
		return nil, apperr.NotFound("payment allocation", payment.ID+"/"+share.ID)
	}

	alloc.State = models.StateDeleted
	if err := tx.UpdateAllocation(ctx, alloc); err != nil {
		return nil, err
	}

	if a.policy == UnlinkRevert {
		if err := revertIfUnbacked(ctx, tx, share, payment.ID); err != nil {
			return nil, err
		}
	}
	return alloc, nil
}

// DeletePayment deactivates payment and its allocations. Every share the
// payment covered is reverted to unpaid unless another active payment still
// covers it. It returns the shares that were reverted.
func (a *Allocator) DeletePayment(ctx context.Context, tx storage.Tx, payment *models.Payment) ([]*models.ExpenseShare, error) {
	var reverted []*models.ExpenseShare
	for i := range payment.Allocations {
		alloc := &payment.Allocations[i]
		if !alloc.State.Active() {
			continue
		}

		share, err := tx.GetShare(ctx, alloc.ShareID)
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			share = nil
		case err != nil:
			return nil, err
		}

		if share != nil && share.Paid {
			backed, err := backedByOthers(ctx, tx, share.ID, payment.ID)
			if err != nil {
				return nil, err
			}
			if !backed {
				if err := ledger.MarkUnpaid(share); err != nil {
					return nil, err
				}
				if err := tx.UpdateShare(ctx, share); err != nil {
					return nil, err
				}
				reverted = append(reverted, share)
			}
		}

		alloc.State = models.StateDeleted
		if err := tx.UpdateAllocation(ctx, alloc); err != nil {
			return nil, err
		}
	}

	payment.State = models.StateDeleted
	if err := tx.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return reverted, nil
}

// AutoAllocate spreads the unallocated part of payment over the payer's
// unpaid shares on expenses the payee created, oldest expense first.
func (a *Allocator) AutoAllocate(ctx context.Context, tx storage.Tx, payment *models.Payment) ([]*models.Allocation, error) {
	remaining := payment.UnallocatedAmount()
	if !remaining.IsPositive() {
		return nil, nil
	}

	expenses, err := tx.ListExpenses(ctx, payment.HouseholdID)
	if err != nil {
		return nil, err
	}

	var created []*models.Allocation
	for _, e := range expenses {
		if e.CreatedBy != payment.PayeeID || e.Currency != payment.Currency {
			continue
		}
		for i := range e.Shares {
			if !remaining.IsPositive() {
				return created, nil
			}
			share := &e.Shares[i]
			if share.MembershipID != payment.PayerID || share.Paid {
				continue
			}
			if _, ok := payment.ActiveAllocationFor(share.ID); ok {
				continue
			}

			covered, err := coverage(ctx, tx, share.ID, "")
			if err != nil {
				return nil, err
			}
			amount := decimal.Min(share.Amount.Sub(covered), remaining)
			if !amount.IsPositive() {
				continue
			}

			alloc, err := a.Link(ctx, tx, payment, share, amount)
			if err != nil {
				return nil, err
			}
			created = append(created, alloc)
			remaining = remaining.Sub(amount)
		}
	}
	return created, nil
}

// coverage sums the active allocations on a share, skipping those of
// excludePayment.
func coverage(ctx context.Context, tx storage.Tx, shareID, excludePayment string) (decimal.Decimal, error) {
	allocations, err := tx.ListAllocationsByShare(ctx, shareID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, al := range allocations {
		if al.PaymentID != excludePayment {
			total = total.Add(al.Amount)
		}
	}
	return total, nil
}

func backedByOthers(ctx context.Context, tx storage.Tx, shareID, paymentID string) (bool, error) {
	allocations, err := tx.ListAllocationsByShare(ctx, shareID)
	if err != nil {
		return false, err
	}
	for _, al := range allocations {
		if al.PaymentID != paymentID {
			return true, nil
		}
	}
	return false, nil
}

func revertIfUnbacked(ctx context.Context, tx storage.Tx, share *models.ExpenseShare, paymentID string) error {
	if !share.Paid {
		return nil
	}
	backed, err := backedByOthers(ctx, tx, share.ID, paymentID)
	if err != nil || backed {
		return err
	}
	if err := ledger.MarkUnpaid(share); err != nil {
		return err
	}
	return tx.UpdateShare(ctx, share)
}
