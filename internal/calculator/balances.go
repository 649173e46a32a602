package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ShareForBalance is the minimal view of an expense share needed for balances.
type ShareForBalance struct {
	OwnerID    string // member who owes the share
	CreditorID string // member who created (paid) the expense
	Amount     decimal.Decimal
	Paid       bool
}

// MemberBalance is the balance of one household member.
type MemberBalance struct {
	MemberID string
	Owed     decimal.Decimal // unpaid shares this member owes others
	OwedTo   decimal.Decimal // unpaid shares others owe this member
	Net      decimal.Decimal // OwedTo - Owed. Positive = the household owes them
}

// Settlement is a suggested transfer that moves balances toward zero.
type Settlement struct {
	From   string // debtor
	To     string // creditor
	Amount decimal.Decimal
}

// ComputeBalances aggregates unpaid shares into per-member balances.
//
// A member's own share of an expense they created is neither owed nor owed-to,
// so the net balances of a household always sum to zero.
//
// Balances are returned in members order. Owners or creditors that are not in
// members (for example former members) are appended in the order they appear.
func ComputeBalances(members []string, shares []ShareForBalance) []MemberBalance {
	index := make(map[string]int, len(members))
	balances := make([]MemberBalance, 0, len(members))

	get := func(id string) *MemberBalance {
		i, ok := index[id]
		if !ok {
			i = len(balances)
			index[id] = i
			balances = append(balances, MemberBalance{
				MemberID: id,
				Owed:     decimal.Zero,
				OwedTo:   decimal.Zero,
			})
		}
		return &balances[i]
	}

	for _, m := range members {
		get(m)
	}

	for _, s := range shares {
		if s.Paid || s.OwnerID == s.CreditorID {
			continue
		}
		owner := get(s.OwnerID)
		owner.Owed = owner.Owed.Add(s.Amount)
		creditor := get(s.CreditorID)
		creditor.OwedTo = creditor.OwedTo.Add(s.Amount)
	}

	for i := range balances {
		balances[i].Net = balances[i].OwedTo.Sub(balances[i].Owed)
	}
	return balances
}

// SuggestSettlements pairs the largest debtor with the largest creditor until
// either side runs out. Amounts within 0.01 of zero count as settled.
func SuggestSettlements(balances []MemberBalance) []Settlement {
	type party struct {
		id      string
		balance decimal.Decimal
	}

	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.Net.IsNegative():
			debtors = append(debtors, party{id: b.MemberID, balance: b.Net.Neg()})
		case b.Net.IsPositive():
			creditors = append(creditors, party{id: b.MemberID, balance: b.Net})
		}
	}

	// Largest amounts first; member ID breaks ties so output is deterministic.
	byBalance := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if c := parties[i].balance.Cmp(parties[j].balance); c != 0 {
				return c > 0
			}
			return parties[i].id < parties[j].id
		}
	}
	sort.SliceStable(debtors, byBalance(debtors))
	sort.SliceStable(creditors, byBalance(creditors))

	settlements := []Settlement{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.balance, creditor.balance)
		if amount.GreaterThan(tolerance) {
			settlements = append(settlements, Settlement{
				From:   debtor.id,
				To:     creditor.id,
				Amount: amount,
			})
		}

		debtor.balance = debtor.balance.Sub(amount)
		creditor.balance = creditor.balance.Sub(amount)

		if debtor.balance.Abs().LessThanOrEqual(tolerance) {
			i++
		}
		if creditor.balance.Abs().LessThanOrEqual(tolerance) {
			j++
		}
	}
	return settlements
}
