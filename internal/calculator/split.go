package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/models"
)

// ErrInvalidInput is wrapped by errors for inputs no split can be computed from
// (non-positive amount, no members).
var ErrInvalidInput = errors.New("invalid split input")

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.New(1, -2)
	cent      = decimal.New(1, -2)
)

// Portion is one member's input for a percentage or custom split: a percentage
// or an amount depending on the method. Order matters, the last portion of a
// percentage split absorbs the rounding residual.
type Portion struct {
	MemberID string
	Value    decimal.Decimal
}

// Share is the computed share of one member.
type Share struct {
	MemberID   string
	Amount     decimal.Decimal
	Percentage decimal.NullDecimal
}

// Split computes the shares of amount for the given method. Equal splits divide
// among members; percentage and custom splits read their members from portions.
// Shares are returned in input order.
func Split(method models.SplitMethod, amount decimal.Decimal, members []string, portions []Portion) ([]Share, error) {
	switch method {
	case models.SplitEqual:
		if err := checkMembers(members); err != nil {
			return nil, err
		}
		amounts, err := EqualSplit(amount, len(members))
		if err != nil {
			return nil, err
		}
		shares := make([]Share, len(members))
		for i, m := range members {
			shares[i] = Share{MemberID: m, Amount: amounts[i]}
		}
		return shares, nil

	case models.SplitPercentage:
		result, err := PercentageSplit(amount, portions)
		if err != nil {
			return nil, err
		}
		shares := make([]Share, len(result))
		for i, p := range result {
			shares[i] = Share{
				MemberID:   p.MemberID,
				Amount:     p.Value,
				Percentage: decimal.NewNullDecimal(portions[i].Value.Round(2)),
			}
		}
		return shares, nil

	case models.SplitCustom:
		result, err := CustomSplit(amount, portions)
		if err != nil {
			return nil, err
		}
		shares := make([]Share, len(result))
		for i, p := range result {
			shares[i] = Share{MemberID: p.MemberID, Amount: p.Value}
		}
		return shares, nil
	}
	return nil, apperr.Validation("unknown split method %q", method)
}

// EqualSplit divides amount into n shares that sum exactly to amount.
// Each share starts at amount/n rounded half-up to cents; the rounding
// remainder is then handed out one cent at a time from the first share on.
func EqualSplit(amount decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, apperr.Wrap(apperr.KindValidation, ErrInvalidInput, "split needs at least one member, got %d", n)
	}
	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	count := decimal.NewFromInt(int64(n))
	base := amount.DivRound(count, 2)
	remainder := amount.Sub(base.Mul(count)).Mul(hundred).IntPart()

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}
	for i := 0; remainder != 0; i = (i + 1) % n {
		if remainder > 0 {
			shares[i] = shares[i].Add(cent)
			remainder--
		} else {
			shares[i] = shares[i].Sub(cent)
			remainder++
		}
	}
	return shares, nil
}

// PercentageSplit converts percentages into amounts. The percentages must sum to
// 100 within 0.01. Every portion but the last is rounded half-up to cents; the
// last receives whatever is left so the amounts sum exactly to amount. A
// negative remainder, possible when the percentages exceed 100 within the
// tolerance, is rejected.
func PercentageSplit(amount decimal.Decimal, portions []Portion) ([]Portion, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := checkPortions(portions); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range portions {
		if p.Value.IsNegative() {
			return nil, apperr.Validation("percentage for member %s cannot be negative", p.MemberID)
		}
		total = total.Add(p.Value)
	}
	if total.Sub(hundred).Abs().GreaterThan(tolerance) {
		return nil, apperr.Validation("percentages must sum to 100, got %s", total.String())
	}

	result := make([]Portion, len(portions))
	allocated := decimal.Zero
	last := len(portions) - 1
	for i, p := range portions[:last] {
		share := amount.Mul(p.Value).Div(hundred).Round(2)
		result[i] = Portion{MemberID: p.MemberID, Value: share}
		allocated = allocated.Add(share)
	}
	residual := amount.Sub(allocated)
	if residual.IsNegative() {
		return nil, apperr.Validation("percentages over 100 leave member %s a negative amount of %s",
			portions[last].MemberID, residual.StringFixed(2))
	}
	result[last] = Portion{MemberID: portions[last].MemberID, Value: residual}
	return result, nil
}

// CustomSplit accepts explicit amounts as long as none is negative and they sum to
// amount within 0.01.
func CustomSplit(amount decimal.Decimal, portions []Portion) ([]Portion, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := checkPortions(portions); err != nil {
		return nil, err
	}

	total := decimal.Zero
	result := make([]Portion, len(portions))
	for i, p := range portions {
		if p.Value.IsNegative() {
			return nil, apperr.Validation("amount for member %s cannot be negative", p.MemberID)
		}
		result[i] = Portion{MemberID: p.MemberID, Value: p.Value.Round(2)}
		total = total.Add(p.Value)
	}
	if total.Sub(amount).Abs().GreaterThan(tolerance) {
		return nil, apperr.Validation("custom amounts sum to %s, expected %s", total.StringFixed(2), amount.StringFixed(2))
	}
	return result, nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Wrap(apperr.KindValidation, ErrInvalidInput, "amount must be positive, got %s", amount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return apperr.Validation("amount %s has more than 2 decimal places", amount.String())
	}
	return nil
}

func checkMembers(members []string) error {
	if len(members) == 0 {
		return apperr.Wrap(apperr.KindValidation, ErrInvalidInput, "split needs at least one member")
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" {
			return apperr.Validation("member id cannot be empty")
		}
		if seen[m] {
			return apperr.Validation("member %s appears more than once", m)
		}
		seen[m] = true
	}
	return nil
}

func checkPortions(portions []Portion) error {
	members := make([]string, len(portions))
	for i, p := range portions {
		members[i] = p.MemberID
	}
	return checkMembers(members)
}
