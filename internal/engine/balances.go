package engine

import (
	"context"

	"github.com/mmynk/hearthledger/internal/calculator"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// HouseholdBalances computes every member's balance from the unpaid shares.
// Balances are never cached.
func (e *Engine) HouseholdBalances(ctx context.Context, userID, householdID string) ([]calculator.MemberBalance, error) {
	var balances []calculator.MemberBalance
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		if _, err := actorIn(ctx, tx, householdID, userID); err != nil {
			return err
		}
		var err error
		balances, _, _, err = loadBalances(ctx, tx, householdID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// SuggestSettlements proposes the transfers that would settle the household.
func (e *Engine) SuggestSettlements(ctx context.Context, userID, householdID string) ([]calculator.Settlement, error) {
	balances, err := e.HouseholdBalances(ctx, userID, householdID)
	if err != nil {
		return nil, err
	}
	return calculator.SuggestSettlements(balances), nil
}

// Report is a consistent snapshot of a household.
type Report struct {
	Household   *models.Household
	Members     []*models.Membership
	Balances    []calculator.MemberBalance
	Settlements []calculator.Settlement
	Expenses    []*models.Expense
	Payments    []*models.Payment
}

// HouseholdReport reads everything about a household in one transaction.
func (e *Engine) HouseholdReport(ctx context.Context, userID, householdID string) (*Report, error) {
	r := &Report{}
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		if _, err := actorIn(ctx, tx, householdID, userID); err != nil {
			return err
		}
		var err error
		if r.Household, err = tx.GetHousehold(ctx, householdID); err != nil {
			return err
		}
		if r.Balances, r.Members, r.Expenses, err = loadBalances(ctx, tx, householdID); err != nil {
			return err
		}
		r.Payments, err = tx.ListPayments(ctx, householdID)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.Settlements = calculator.SuggestSettlements(r.Balances)
	return r, nil
}

func loadBalances(ctx context.Context, tx storage.Tx, householdID string) ([]calculator.MemberBalance, []*models.Membership, []*models.Expense, error) {
	members, err := tx.ListMemberships(ctx, householdID)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := tx.ListExpenses(ctx, householdID)
	if err != nil {
		return nil, nil, nil, err
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	var shares []calculator.ShareForBalance
	for _, exp := range expenses {
		for _, s := range exp.Shares {
			shares = append(shares, calculator.ShareForBalance{
				OwnerID:    s.MembershipID,
				CreditorID: exp.CreatedBy,
				Amount:     s.Amount,
				Paid:       s.Paid,
			})
		}
	}
	return calculator.ComputeBalances(ids, shares), members, expenses, nil
}
