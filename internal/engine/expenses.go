package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/calculator"
	"github.com/mmynk/hearthledger/internal/events"
	"github.com/mmynk/hearthledger/internal/ledger"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// SplitInput selects how an expense is divided. Members (membership IDs) are
// used by equal splits; Portions carry percentages or amounts for the other
// methods.
type SplitInput struct {
	Method   models.SplitMethod
	Members  []string
	Portions []calculator.Portion
}

// memberIDs returns the memberships the split refers to.
func (s SplitInput) memberIDs() []string {
	if s.Method == models.SplitEqual {
		return s.Members
	}
	ids := make([]string, len(s.Portions))
	for i, p := range s.Portions {
		ids[i] = p.MemberID
	}
	return ids
}

// CreateExpenseInput describes a new expense. The calling member is recorded
// as its creator and is owed the unpaid shares of everyone else.
type CreateExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Currency    string
	Category    string
	ExpenseDate time.Time
	Split       SplitInput
}

// CreateExpense records an expense and its shares in one transaction.
func (e *Engine) CreateExpense(ctx context.Context, userID, householdID string, in CreateExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperr.Validation("expense description is required")
	}
	if err := checkMoney("expense amount", in.Amount); err != nil {
		return nil, err
	}
	shares, err := calculator.Split(in.Split.Method, in.Amount, in.Split.Members, in.Split.Portions)
	if err != nil {
		return nil, err
	}

	var expense *models.Expense
	err = e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
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
		if err := checkMembers(ctx, tx, householdID, in.Split.memberIDs()); err != nil {
			return err
		}

		now := e.now().UTC()
		expenseDate := in.ExpenseDate
		if expenseDate.IsZero() {
			expenseDate = now
		}
		expense = &models.Expense{
			HouseholdID: householdID,
			CreatedBy:   actor.ID,
			Description: description,
			Amount:      in.Amount,
			Currency:    currency,
			Category:    strings.TrimSpace(in.Category),
			Method:      in.Split.Method,
			ExpenseDate: expenseDate.UTC(),
			CreatedAt:   now,
			Shares:      toShares(shares),
		}
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		emit(events.Event{Kind: events.ExpenseCreated, HouseholdID: householdID, ActorID: actor.ID, EntityID: expense.ID,
			Attrs: attrs("amount", expense.Amount.StringFixed(2), "currency", currency, "method", string(expense.Method))})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpenseSplits replaces the shares of an expense with a new split of the
// same amount. Old shares are soft-deleted along with their allocations; the
// new shares start unpaid.
func (e *Engine) UpdateExpenseSplits(ctx context.Context, userID, expenseID string, split SplitInput) (*models.Expense, error) {
	var expense *models.Expense
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		var err error
		expense, err = tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		actor, err := actorIn(ctx, tx, expense.HouseholdID, userID)
		if err != nil {
			return err
		}
		if !ledger.CanEditExpense(actor, expense) {
			return apperr.Permission("only the expense creator or an admin can change its split")
		}

		computed, err := calculator.Split(split.Method, expense.Amount, split.Members, split.Portions)
		if err != nil {
			return err
		}
		if err := checkMembers(ctx, tx, expense.HouseholdID, split.memberIDs()); err != nil {
			return err
		}

		for i := range expense.Shares {
			if err := deleteShare(ctx, tx, &expense.Shares[i]); err != nil {
				return err
			}
		}

		expense.Method = split.Method
		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		expense.Shares = toShares(computed)
		if err := tx.AddShares(ctx, expense.ID, expense.Shares); err != nil {
			return err
		}
		emit(events.Event{Kind: events.ExpenseSplitsSet, HouseholdID: expense.HouseholdID, ActorID: actor.ID, EntityID: expense.ID,
			Attrs: attrs("method", string(split.Method))})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpense returns an expense with its shares. Only members may read it.
func (e *Engine) GetExpense(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	var expense *models.Expense
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		var err error
		expense, err = tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		_, err = actorIn(ctx, tx, expense.HouseholdID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses returns the household's expenses, oldest first.
func (e *Engine) ListExpenses(ctx context.Context, userID, householdID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		if _, err := actorIn(ctx, tx, householdID, userID); err != nil {
			return err
		}
		var err error
		expenses, err = tx.ListExpenses(ctx, householdID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense soft-deletes an expense, its shares and the allocations on
// those shares.
func (e *Engine) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		actor, err := actorIn(ctx, tx, expense.HouseholdID, userID)
		if err != nil {
			return err
		}
		if !ledger.CanEditExpense(actor, expense) {
			return apperr.Permission("only the expense creator or an admin can delete it")
		}

		for i := range expense.Shares {
			if err := deleteShare(ctx, tx, &expense.Shares[i]); err != nil {
				return err
			}
		}
		expense.State = models.StateDeleted
		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		emit(events.Event{Kind: events.ExpenseDeleted, HouseholdID: expense.HouseholdID, ActorID: actor.ID, EntityID: expense.ID})
		return nil
	})
}

// MarkSharePaid records that a share was settled outside of any payment.
func (e *Engine) MarkSharePaid(ctx context.Context, userID, shareID, method, notes string) (*models.ExpenseShare, error) {
	var share *models.ExpenseShare
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		var (
			expense *models.Expense
			actor   *models.Membership
			err     error
		)
		share, expense, actor, err = loadShare(ctx, tx, userID, shareID)
		if err != nil {
			return err
		}
		if !ledger.CanMarkPaid(actor, expense) {
			return apperr.Permission("only the expense creator or an admin can mark shares paid")
		}
		if err := ledger.MarkPaid(share, strings.TrimSpace(method), strings.TrimSpace(notes), e.now()); err != nil {
			return err
		}
		if err := tx.UpdateShare(ctx, share); err != nil {
			return err
		}
		emit(events.Event{Kind: events.SharePaid, HouseholdID: expense.HouseholdID, ActorID: actor.ID, EntityID: share.ID,
			Attrs: attrs("amount", share.Amount.StringFixed(2), "method", share.PaymentMethod)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// MarkShareUnpaid reverts a share to unpaid.
func (e *Engine) MarkShareUnpaid(ctx context.Context, userID, shareID string) (*models.ExpenseShare, error) {
	var share *models.ExpenseShare
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		var (
			expense *models.Expense
			actor   *models.Membership
			err     error
		)
		share, expense, actor, err = loadShare(ctx, tx, userID, shareID)
		if err != nil {
			return err
		}
		if !ledger.CanMarkUnpaid(actor, expense, share) {
			return apperr.Permission("not allowed to mark this share unpaid")
		}
		if err := ledger.MarkUnpaid(share); err != nil {
			return err
		}
		if err := tx.UpdateShare(ctx, share); err != nil {
			return err
		}
		emit(events.Event{Kind: events.ShareUnpaid, HouseholdID: expense.HouseholdID, ActorID: actor.ID, EntityID: share.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// loadShare reads a share, its expense and the acting member.
func loadShare(ctx context.Context, tx storage.Tx, userID, shareID string) (*models.ExpenseShare, *models.Expense, *models.Membership, error) {
	share, err := tx.GetShare(ctx, shareID)
	if err != nil {
		return nil, nil, nil, err
	}
	expense, err := tx.GetExpense(ctx, share.ExpenseID)
	if err != nil {
		return nil, nil, nil, err
	}
	actor, err := actorIn(ctx, tx, expense.HouseholdID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	return share, expense, actor, nil
}

// checkMembers verifies every ID is an active member of the household.
func checkMembers(ctx context.Context, tx storage.Tx, householdID string, ids []string) error {
	for _, id := range ids {
		if _, err := activeMember(ctx, tx, householdID, id); err != nil {
			return err
		}
	}
	return nil
}

func toShares(computed []calculator.Share) []models.ExpenseShare {
	shares := make([]models.ExpenseShare, len(computed))
	for i, c := range computed {
		shares[i] = models.ExpenseShare{
			MembershipID: c.MemberID,
			Amount:       c.Amount,
			Percentage:   c.Percentage,
			State:        models.StateActive,
		}
	}
	return shares
}
