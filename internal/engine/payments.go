package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/events"
	"github.com/mmynk/hearthledger/internal/ledger"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// AllocationInput applies part of a new payment to a share.
type AllocationInput struct {
	ShareID string
	Amount  decimal.Decimal
}

// CreatePaymentInput describes money moving from payer to payee.
type CreatePaymentInput struct {
	PayerID     string
	PayeeID     string
	Amount      decimal.Decimal
	Currency    string
	Type        models.PaymentType
	Method      string
	PaymentDate time.Time
	Description string
	// Allocations are linked in the same transaction as the payment.
	Allocations []AllocationInput
	// AutoAllocate spreads what Allocations leave over the payer's unpaid
	// shares on the payee's expenses. Reimbursements only.
	AutoAllocate bool
}

// CreatePayment records a payment and its allocations in one transaction.
// Any failing allocation rolls back the whole payment.
func (e *Engine) CreatePayment(ctx context.Context, userID, householdID string, in CreatePaymentInput) (*models.Payment, error) {
	if err := checkMoney("payment amount", in.Amount); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = models.PaymentReimbursement
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("unknown payment type %q", in.Type)
	}
	if in.PayerID == "" || in.PayeeID == "" {
		return nil, apperr.Validation("payer and payee are required")
	}
	if in.PayerID == in.PayeeID {
		return nil, apperr.Validation("payer and payee must be different members")
	}
	if in.AutoAllocate && in.Type != models.PaymentReimbursement {
		return nil, apperr.Validation("automatic allocation is only available for reimbursements")
	}

	var payment *models.Payment
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		actor, err := actorIn(ctx, tx, householdID, userID)
		if err != nil {
			return err
		}
		household, err := tx.GetHousehold(ctx, householdID)
		if err != nil {
			return err
		}
		currency, err := normalizeCurrency(in.Currency, household.Currency)
		if err != nil {
			return err
		}
		if err := checkMembers(ctx, tx, householdID, []string{in.PayerID, in.PayeeID}); err != nil {
			return err
		}

		now := e.now().UTC()
		paymentDate := in.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = now
		}
		payment = &models.Payment{
			HouseholdID: householdID,
			PayerID:     in.PayerID,
			PayeeID:     in.PayeeID,
			Amount:      in.Amount,
			Currency:    currency,
			Type:        in.Type,
			Method:      strings.TrimSpace(in.Method),
			PaymentDate: paymentDate.UTC(),
			Description: strings.TrimSpace(in.Description),
			CreatedBy:   actor.ID,
			CreatedAt:   now,
		}
		if !ledger.CanManagePayment(actor, payment) {
			return apperr.Permission("only the payer, the payee or an admin can record a payment")
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		emit(events.Event{Kind: events.PaymentCreated, HouseholdID: householdID, ActorID: actor.ID, EntityID: payment.ID,
			Attrs: attrs("amount", payment.Amount.StringFixed(2), "currency", currency, "type", string(payment.Type))})

		for _, ai := range in.Allocations {
			share, err := tx.GetShare(ctx, ai.ShareID)
			if err != nil {
				return err
			}
			alloc, err := e.alloc.Link(ctx, tx, payment, share, ai.Amount)
			if err != nil {
				return err
			}
			emit(linkedEvent(payment, actor, alloc, share))
		}

		if in.AutoAllocate {
			created, err := e.alloc.AutoAllocate(ctx, tx, payment)
			if err != nil {
				return err
			}
			for _, alloc := range created {
				emit(events.Event{Kind: events.PaymentLinked, HouseholdID: householdID, ActorID: actor.ID, EntityID: payment.ID,
					Attrs: attrs("share_id", alloc.ShareID, "amount", alloc.Amount.StringFixed(2), "auto", "true")})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// LinkPayment allocates amount of an existing payment to a share.
func (e *Engine) LinkPayment(ctx context.Context, userID, paymentID, shareID string, amount decimal.Decimal) (*models.Allocation, error) {
	var alloc *models.Allocation
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		payment, actor, err := e.loadPayment(ctx, tx, userID, paymentID)
		if err != nil {
			return err
		}
		share, err := tx.GetShare(ctx, shareID)
		if err != nil {
			return err
		}
		alloc, err = e.alloc.Link(ctx, tx, payment, share, amount)
		if err != nil {
			return err
		}
		emit(linkedEvent(payment, actor, alloc, share))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// UnlinkPayment removes the allocation of a payment on a share. Whether a paid
// share reverts to unpaid follows the allocator's unlink policy.
func (e *Engine) UnlinkPayment(ctx context.Context, userID, paymentID, shareID string) error {
	return e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		payment, actor, err := e.loadPayment(ctx, tx, userID, paymentID)
		if err != nil {
			return err
		}
		share, err := tx.GetShare(ctx, shareID)
		if err != nil {
			return err
		}
		alloc, err := e.alloc.Unlink(ctx, tx, payment, share)
		if err != nil {
			return err
		}
		emit(events.Event{Kind: events.PaymentUnlinked, HouseholdID: payment.HouseholdID, ActorID: actor.ID, EntityID: payment.ID,
			Attrs: attrs("share_id", share.ID, "amount", alloc.Amount.StringFixed(2), "share_paid", boolString(share.Paid))})
		return nil
	})
}

// DeletePayment soft-deletes a payment and its allocations, reverting shares
// that no other payment still covers. It returns the IDs of reverted shares.
func (e *Engine) DeletePayment(ctx context.Context, userID, paymentID string) ([]string, error) {
	var revertedIDs []string
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		payment, actor, err := e.loadPayment(ctx, tx, userID, paymentID)
		if err != nil {
			return err
		}
		reverted, err := e.alloc.DeletePayment(ctx, tx, payment)
		if err != nil {
			return err
		}
		revertedIDs = revertedIDs[:0]
		for _, s := range reverted {
			revertedIDs = append(revertedIDs, s.ID)
			emit(events.Event{Kind: events.ShareUnpaid, HouseholdID: payment.HouseholdID, ActorID: actor.ID, EntityID: s.ID,
				Attrs: attrs("payment_id", payment.ID)})
		}
		emit(events.Event{Kind: events.PaymentDeleted, HouseholdID: payment.HouseholdID, ActorID: actor.ID, EntityID: payment.ID,
			Attrs: attrs("amount", payment.Amount.StringFixed(2))})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revertedIDs, nil
}

// GetPayment returns a payment with its allocations. Only members may read it.
func (e *Engine) GetPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	var payment *models.Payment
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		var err error
		payment, err = tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		_, err = actorIn(ctx, tx, payment.HouseholdID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns the household's payments, newest first.
func (e *Engine) ListPayments(ctx context.Context, userID, householdID string) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		if _, err := actorIn(ctx, tx, householdID, userID); err != nil {
			return err
		}
		var err error
		payments, err = tx.ListPayments(ctx, householdID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// loadPayment reads a payment and checks the caller may manage it.
func (e *Engine) loadPayment(ctx context.Context, tx storage.Tx, userID, paymentID string) (*models.Payment, *models.Membership, error) {
	payment, err := tx.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := actorIn(ctx, tx, payment.HouseholdID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ledger.CanManagePayment(actor, payment) {
		return nil, nil, apperr.Permission("only the payer, the payee or an admin can manage this payment")
	}
	return payment, actor, nil
}

func linkedEvent(p *models.Payment, actor *models.Membership, a *models.Allocation, s *models.ExpenseShare) events.Event {
	return events.Event{Kind: events.PaymentLinked, HouseholdID: p.HouseholdID, ActorID: actor.ID, EntityID: p.ID,
		Attrs: attrs("share_id", a.ShareID, "amount", a.Amount.StringFixed(2), "share_paid", boolString(s.Paid))}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
