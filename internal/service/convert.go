package service

import (
	"github.com/mmynk/hearthledger/internal/calculator"
	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/pkg/api"
)

func toAPIHousehold(v *engine.HouseholdView) *api.Household {
	members := make([]*api.Member, len(v.Members))
	for i, m := range v.Members {
		members[i] = toAPIMember(m)
	}
	return &api.Household{
		ID:        v.Household.ID,
		Name:      v.Household.Name,
		Currency:  v.Household.Currency,
		CreatedAt: v.Household.CreatedAt,
		Members:   members,
	}
}

func toAPIMember(m *models.Membership) *api.Member {
	return &api.Member{
		ID:          m.ID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	shares := make([]*api.Share, len(e.Shares))
	for i := range e.Shares {
		shares[i] = toAPIShare(&e.Shares[i])
	}
	return &api.Expense{
		ID:          e.ID,
		HouseholdID: e.HouseholdID,
		CreatedBy:   e.CreatedBy,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Category:    e.Category,
		SplitMethod: string(e.Method),
		ExpenseDate: e.ExpenseDate,
		CreatedAt:   e.CreatedAt,
		Shares:      shares,
	}
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPIShare(s *models.ExpenseShare) *api.Share {
	share := &api.Share{
		ID:            s.ID,
		ExpenseID:     s.ExpenseID,
		MemberID:      s.MembershipID,
		Amount:        s.Amount,
		Paid:          s.Paid,
		PaidAt:        s.PaidAt,
		PaymentMethod: s.PaymentMethod,
		Notes:         s.Notes,
	}
	if s.Percentage.Valid {
		pct := s.Percentage.Decimal
		share.Percentage = &pct
	}
	return share
}

func toAPIPayment(p *models.Payment) *api.Payment {
	allocations := make([]*api.Allocation, 0, len(p.Allocations))
	for i := range p.Allocations {
		if p.Allocations[i].State.Active() {
			allocations = append(allocations, toAPIAllocation(&p.Allocations[i]))
		}
	}
	return &api.Payment{
		ID:                p.ID,
		HouseholdID:       p.HouseholdID,
		PayerID:           p.PayerID,
		PayeeID:           p.PayeeID,
		Amount:            p.Amount,
		UnallocatedAmount: p.UnallocatedAmount(),
		Currency:          p.Currency,
		Type:              string(p.Type),
		Method:            p.Method,
		PaymentDate:       p.PaymentDate,
		Description:       p.Description,
		CreatedBy:         p.CreatedBy,
		CreatedAt:         p.CreatedAt,
		Allocations:       allocations,
	}
}

func toAPIAllocation(a *models.Allocation) *api.Allocation {
	return &api.Allocation{
		ID:        a.ID,
		PaymentID: a.PaymentID,
		ShareID:   a.ShareID,
		Amount:    a.Amount,
		CreatedAt: a.CreatedAt,
	}
}

func toAPIBalances(balances []calculator.MemberBalance) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = &api.Balance{
			MemberID: b.MemberID,
			Owed:     b.Owed,
			OwedTo:   b.OwedTo,
			Net:      b.Net,
		}
	}
	return out
}

func toAPISettlements(settlements []calculator.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = &api.Settlement{From: s.From, To: s.To, Amount: s.Amount}
	}
	return out
}

// toSplitInput converts a split request into engine input.
func toSplitInput(split *api.Split) engine.SplitInput {
	portions := make([]calculator.Portion, len(split.Portions))
	for i, p := range split.Portions {
		portions[i] = calculator.Portion{MemberID: p.MemberID, Value: p.Value}
	}
	return engine.SplitInput{
		Method:   models.SplitMethod(split.Method),
		Members:  split.Members,
		Portions: portions,
	}
}
