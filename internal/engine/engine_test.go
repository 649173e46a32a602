package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hearthledger/internal/allocator"
	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/calculator"
	"github.com/mmynk/hearthledger/internal/events"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage/memstore"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type household struct {
	eng   *Engine
	rec   *events.Recorder
	id    string
	alice *models.Membership // admin, user "u-alice"
	bob   *models.Membership // user "u-bob"
	carol *models.Membership // user "u-carol"
	ctx   context.Context
}

func newHousehold(t *testing.T, opts ...Option) *household {
	t.Helper()
	rec := &events.Recorder{}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{WithPublisher(rec), WithClock(func() time.Time { return clock })}, opts...)
	h := &household{eng: New(memstore.New(), opts...), rec: rec, ctx: context.Background()}

	view, err := h.eng.CreateHousehold(h.ctx, "u-alice", CreateHouseholdInput{Name: "Flat 3B", Currency: "eur", DisplayName: "Alice"})
	require.NoError(t, err)
	h.id = view.Household.ID
	h.alice = view.Members[0]

	h.bob, err = h.eng.AddMember(h.ctx, "u-alice", h.id, AddMemberInput{UserID: "u-bob", DisplayName: "Bob"})
	require.NoError(t, err)
	h.carol, err = h.eng.AddMember(h.ctx, "u-alice", h.id, AddMemberInput{UserID: "u-carol", DisplayName: "Carol"})
	require.NoError(t, err)
	return h
}

func (h *household) equalExpense(t *testing.T, userID, amount string) *models.Expense {
	t.Helper()
	exp, err := h.eng.CreateExpense(h.ctx, userID, h.id, CreateExpenseInput{
		Description: "Groceries",
		Amount:      dec(amount),
		Split: SplitInput{
			Method:  models.SplitEqual,
			Members: []string{h.alice.ID, h.bob.ID, h.carol.ID},
		},
	})
	require.NoError(t, err)
	return exp
}

func shareOf(exp *models.Expense, membershipID string) *models.ExpenseShare {
	for i := range exp.Shares {
		if exp.Shares[i].MembershipID == membershipID {
			return &exp.Shares[i]
		}
	}
	return nil
}

func balanceOf(balances []calculator.MemberBalance, id string) calculator.MemberBalance {
	for _, b := range balances {
		if b.MemberID == id {
			return b
		}
	}
	return calculator.MemberBalance{}
}

func TestCreateHousehold(t *testing.T) {
	h := newHousehold(t)

	view, err := h.eng.GetHousehold(h.ctx, "u-bob", h.id)
	require.NoError(t, err)
	assert.Equal(t, "EUR", view.Household.Currency)
	assert.Len(t, view.Members, 3)
	assert.Equal(t, models.RoleAdmin, h.alice.Role)
	assert.Equal(t, models.RoleMember, h.bob.Role)

	_, err = h.eng.GetHousehold(h.ctx, "u-stranger", h.id)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = h.eng.CreateHousehold(h.ctx, "u-x", CreateHouseholdInput{Name: "  "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Equal(t, []events.Kind{events.HouseholdCreated, events.MemberAdded, events.MemberAdded}, h.rec.Kinds())
}

func TestAddMember(t *testing.T) {
	h := newHousehold(t)

	_, err := h.eng.AddMember(h.ctx, "u-bob", h.id, AddMemberInput{UserID: "u-dave"})
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err), "members cannot add members")

	_, err = h.eng.AddMember(h.ctx, "u-alice", h.id, AddMemberInput{UserID: "u-bob"})
	assert.Equal(t, apperr.KindState, apperr.KindOf(err), "duplicate membership")

	_, err = h.eng.AddMember(h.ctx, "u-alice", h.id, AddMemberInput{UserID: "u-dave", Role: "owner"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = h.eng.AddMember(h.ctx, "u-alice", "missing", AddMemberInput{UserID: "u-dave"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateExpense(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "100.00")

	require.Len(t, exp.Shares, 3)
	assert.Equal(t, "33.34", exp.Shares[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", exp.Shares[1].Amount.StringFixed(2))
	assert.Equal(t, "33.33", exp.Shares[2].Amount.StringFixed(2))
	assert.True(t, exp.ShareTotal().Equal(exp.Amount))
	assert.Equal(t, h.alice.ID, exp.CreatedBy)
	assert.Equal(t, "EUR", exp.Currency, "defaults to the household currency")

	got, err := h.eng.GetExpense(h.ctx, "u-carol", exp.ID)
	require.NoError(t, err)
	assert.Len(t, got.Shares, 3)
}

func TestCreateExpense_Invalid(t *testing.T) {
	h := newHousehold(t)

	tests := []struct {
		name string
		in   CreateExpenseInput
		kind apperr.Kind
	}{
		{
			name: "percentages not summing to 100",
			in: CreateExpenseInput{Description: "Rent", Amount: dec("1000"), Split: SplitInput{
				Method:   models.SplitPercentage,
				Portions: []calculator.Portion{{MemberID: h.alice.ID, Value: dec("50")}, {MemberID: h.bob.ID, Value: dec("40")}},
			}},
			kind: apperr.KindValidation,
		},
		{
			name: "custom amounts off by more than a cent",
			in: CreateExpenseInput{Description: "Rent", Amount: dec("100"), Split: SplitInput{
				Method:   models.SplitCustom,
				Portions: []calculator.Portion{{MemberID: h.alice.ID, Value: dec("50")}, {MemberID: h.bob.ID, Value: dec("49.98")}},
			}},
			kind: apperr.KindValidation,
		},
		{
			name: "member outside the household",
			in: CreateExpenseInput{Description: "Rent", Amount: dec("100"), Split: SplitInput{
				Method:  models.SplitEqual,
				Members: []string{h.alice.ID, "someone-else"},
			}},
			kind: apperr.KindValidation,
		},
		{
			name: "negative amount",
			in:   CreateExpenseInput{Description: "Rent", Amount: dec("-1"), Split: SplitInput{Method: models.SplitEqual, Members: []string{h.alice.ID}}},
			kind: apperr.KindValidation,
		},
		{
			name: "missing description",
			in:   CreateExpenseInput{Amount: dec("1"), Split: SplitInput{Method: models.SplitEqual, Members: []string{h.alice.ID}}},
			kind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.eng.CreateExpense(h.ctx, "u-alice", h.id, tt.in)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	expenses, err := h.eng.ListExpenses(h.ctx, "u-alice", h.id)
	require.NoError(t, err)
	assert.Empty(t, expenses, "rejected expenses leave nothing behind")
}

func TestUpdateExpenseSplits(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "90.00")
	bobShare := shareOf(exp, h.bob.ID)

	_, err := h.eng.MarkSharePaid(h.ctx, "u-alice", bobShare.ID, "cash", "")
	require.NoError(t, err)

	_, err = h.eng.UpdateExpenseSplits(h.ctx, "u-bob", exp.ID, SplitInput{Method: models.SplitEqual, Members: []string{h.bob.ID}})
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	updated, err := h.eng.UpdateExpenseSplits(h.ctx, "u-alice", exp.ID, SplitInput{
		Method: models.SplitPercentage,
		Portions: []calculator.Portion{
			{MemberID: h.bob.ID, Value: dec("75")},
			{MemberID: h.carol.ID, Value: dec("25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SplitPercentage, updated.Method)

	got, err := h.eng.GetExpense(h.ctx, "u-alice", exp.ID)
	require.NoError(t, err)
	require.Len(t, got.Shares, 2)
	assert.Equal(t, "67.50", shareOf(got, h.bob.ID).Amount.StringFixed(2))
	assert.False(t, shareOf(got, h.bob.ID).Paid, "new shares start unpaid")
	assert.True(t, shareOf(got, h.bob.ID).Percentage.Valid)
	assert.True(t, got.ShareTotal().Equal(got.Amount))

	_, err = h.eng.MarkSharePaid(h.ctx, "u-alice", bobShare.ID, "", "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "old shares are gone")
}

func TestMarkSharePaidAndUnpaid(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "30.00")
	bobShare := shareOf(exp, h.bob.ID)

	_, err := h.eng.MarkSharePaid(h.ctx, "u-bob", bobShare.ID, "cash", "")
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err), "share owner cannot mark own share paid")

	share, err := h.eng.MarkSharePaid(h.ctx, "u-alice", bobShare.ID, "cash", "handed over")
	require.NoError(t, err)
	assert.True(t, share.Paid)
	assert.Equal(t, "handed over", share.Notes)

	_, err = h.eng.MarkSharePaid(h.ctx, "u-alice", bobShare.ID, "cash", "")
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))

	_, err = h.eng.MarkShareUnpaid(h.ctx, "u-carol", bobShare.ID)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	share, err = h.eng.MarkShareUnpaid(h.ctx, "u-bob", bobShare.ID)
	require.NoError(t, err)
	assert.False(t, share.Paid)
	assert.Nil(t, share.PaidAt)

	_, err = h.eng.MarkShareUnpaid(h.ctx, "u-bob", bobShare.ID)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))
}

func TestBalancesAndSettlements(t *testing.T) {
	h := newHousehold(t)

	// Alice pays 120 split three ways, Bob pays 30 split between Bob and Carol.
	h.equalExpense(t, "u-alice", "120.00")
	_, err := h.eng.CreateExpense(h.ctx, "u-bob", h.id, CreateExpenseInput{
		Description: "Internet",
		Amount:      dec("30.00"),
		Split:       SplitInput{Method: models.SplitEqual, Members: []string{h.bob.ID, h.carol.ID}},
	})
	require.NoError(t, err)

	balances, err := h.eng.HouseholdBalances(h.ctx, "u-carol", h.id)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	assert.Equal(t, "80.00", balanceOf(balances, h.alice.ID).Net.StringFixed(2))
	assert.Equal(t, "-25.00", balanceOf(balances, h.bob.ID).Net.StringFixed(2))
	assert.Equal(t, "-55.00", balanceOf(balances, h.carol.ID).Net.StringFixed(2))

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Net)
	}
	assert.True(t, total.IsZero())

	settlements, err := h.eng.SuggestSettlements(h.ctx, "u-alice", h.id)
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.Equal(t, h.carol.ID, settlements[0].From)
	assert.Equal(t, h.alice.ID, settlements[0].To)
	assert.Equal(t, "55.00", settlements[0].Amount.StringFixed(2))
	assert.Equal(t, h.bob.ID, settlements[1].From)
	assert.Equal(t, "25.00", settlements[1].Amount.StringFixed(2))
}

func TestPaymentLifecycle(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "60.00")
	bobShare := shareOf(exp, h.bob.ID)

	payment, err := h.eng.CreatePayment(h.ctx, "u-bob", h.id, CreatePaymentInput{
		PayerID: h.bob.ID,
		PayeeID: h.alice.ID,
		Amount:  dec("20.00"),
		Method:  "bank_transfer",
		Allocations: []AllocationInput{
			{ShareID: bobShare.ID, Amount: dec("20.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentReimbursement, payment.Type)
	assert.True(t, payment.UnallocatedAmount().IsZero())

	balances, err := h.eng.HouseholdBalances(h.ctx, "u-alice", h.id)
	require.NoError(t, err)
	assert.True(t, balanceOf(balances, h.bob.ID).Net.IsZero(), "bob's share is paid through the payment")

	_, err = h.eng.DeletePayment(h.ctx, "u-carol", payment.ID)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err), "carol is neither payer, payee nor admin")

	reverted, err := h.eng.DeletePayment(h.ctx, "u-bob", payment.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bobShare.ID}, reverted)

	balances, err = h.eng.HouseholdBalances(h.ctx, "u-alice", h.id)
	require.NoError(t, err)
	assert.Equal(t, "-20.00", balanceOf(balances, h.bob.ID).Net.StringFixed(2))

	_, err = h.eng.GetPayment(h.ctx, "u-alice", payment.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreatePayment_RollsBackOnFailedAllocation(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "60.00")

	before := len(h.rec.Events)
	_, err := h.eng.CreatePayment(h.ctx, "u-bob", h.id, CreatePaymentInput{
		PayerID: h.bob.ID,
		PayeeID: h.alice.ID,
		Amount:  dec("10.00"),
		Allocations: []AllocationInput{
			{ShareID: shareOf(exp, h.bob.ID).ID, Amount: dec("15.00")},
		},
	})
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))

	payments, err := h.eng.ListPayments(h.ctx, "u-alice", h.id)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Len(t, h.rec.Events, before, "no events are published for a rolled back transaction")
}

func TestCreatePayment_Invalid(t *testing.T) {
	h := newHousehold(t)

	tests := []struct {
		name   string
		userID string
		in     CreatePaymentInput
		kind   apperr.Kind
	}{
		{"same payer and payee", "u-bob", CreatePaymentInput{PayerID: h.bob.ID, PayeeID: h.bob.ID, Amount: dec("1")}, apperr.KindValidation},
		{"zero amount", "u-bob", CreatePaymentInput{PayerID: h.bob.ID, PayeeID: h.alice.ID, Amount: dec("0")}, apperr.KindValidation},
		{"unknown type", "u-bob", CreatePaymentInput{PayerID: h.bob.ID, PayeeID: h.alice.ID, Amount: dec("1"), Type: "gift"}, apperr.KindValidation},
		{"payee outside household", "u-bob", CreatePaymentInput{PayerID: h.bob.ID, PayeeID: "nobody", Amount: dec("1")}, apperr.KindValidation},
		{"recorded by a bystander", "u-carol", CreatePaymentInput{PayerID: h.bob.ID, PayeeID: h.alice.ID, Amount: dec("1")}, apperr.KindPermission},
		{"auto allocation of an adjustment", "u-bob", CreatePaymentInput{PayerID: h.bob.ID, PayeeID: h.alice.ID, Amount: dec("1"), Type: models.PaymentAdjustment, AutoAllocate: true}, apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.eng.CreatePayment(h.ctx, tt.userID, h.id, tt.in)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestLinkAndUnlink(t *testing.T) {
	h := newHousehold(t, WithAllocator(allocator.New(allocator.WithUnlinkPolicy(allocator.UnlinkRevert))))
	exp := h.equalExpense(t, "u-alice", "60.00")
	carolShare := shareOf(exp, h.carol.ID)

	payment, err := h.eng.CreatePayment(h.ctx, "u-carol", h.id, CreatePaymentInput{
		PayerID: h.carol.ID, PayeeID: h.alice.ID, Amount: dec("50.00"),
	})
	require.NoError(t, err)

	_, err = h.eng.LinkPayment(h.ctx, "u-carol", payment.ID, carolShare.ID, dec("25.00"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "more than the share")

	alloc, err := h.eng.LinkPayment(h.ctx, "u-carol", payment.ID, carolShare.ID, dec("20.00"))
	require.NoError(t, err)
	assert.Equal(t, carolShare.ID, alloc.ShareID)

	got, err := h.eng.GetExpense(h.ctx, "u-alice", exp.ID)
	require.NoError(t, err)
	assert.True(t, shareOf(got, h.carol.ID).Paid)

	require.NoError(t, h.eng.UnlinkPayment(h.ctx, "u-alice", payment.ID, carolShare.ID))
	got, err = h.eng.GetExpense(h.ctx, "u-alice", exp.ID)
	require.NoError(t, err)
	assert.False(t, shareOf(got, h.carol.ID).Paid, "revert policy unmarks the share")

	p, err := h.eng.GetPayment(h.ctx, "u-carol", payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", p.UnallocatedAmount().StringFixed(2))
}

func TestCreatePayment_AutoAllocate(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "90.00")

	payment, err := h.eng.CreatePayment(h.ctx, "u-bob", h.id, CreatePaymentInput{
		PayerID: h.bob.ID, PayeeID: h.alice.ID, Amount: dec("40.00"), AutoAllocate: true,
	})
	require.NoError(t, err)
	require.Len(t, payment.Allocations, 1)
	assert.Equal(t, "30.00", payment.Allocations[0].Amount.StringFixed(2))
	assert.Equal(t, "10.00", payment.UnallocatedAmount().StringFixed(2))

	got, err := h.eng.GetExpense(h.ctx, "u-bob", exp.ID)
	require.NoError(t, err)
	assert.True(t, shareOf(got, h.bob.ID).Paid)
}

func TestDeleteExpense(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-bob", "30.00")

	require.Error(t, h.eng.DeleteExpense(h.ctx, "u-carol", exp.ID))
	require.NoError(t, h.eng.DeleteExpense(h.ctx, "u-alice", exp.ID), "admins may delete any expense")

	_, err := h.eng.GetExpense(h.ctx, "u-bob", exp.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	balances, err := h.eng.HouseholdBalances(h.ctx, "u-bob", h.id)
	require.NoError(t, err)
	for _, b := range balances {
		assert.True(t, b.Net.IsZero())
	}
}

func TestRemoveMember(t *testing.T) {
	h := newHousehold(t)
	exp := h.equalExpense(t, "u-alice", "30.00")

	err := h.eng.RemoveMember(h.ctx, "u-bob", h.id, h.carol.ID)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	err = h.eng.RemoveMember(h.ctx, "u-alice", h.id, h.alice.ID)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err), "last admin cannot leave")

	require.NoError(t, h.eng.RemoveMember(h.ctx, "u-carol", h.id, h.carol.ID), "members may leave")

	view, err := h.eng.GetHousehold(h.ctx, "u-alice", h.id)
	require.NoError(t, err)
	assert.Len(t, view.Members, 2)

	got, err := h.eng.GetExpense(h.ctx, "u-alice", exp.ID)
	require.NoError(t, err)
	assert.Nil(t, shareOf(got, h.carol.ID))

	_, err = h.eng.ListExpenses(h.ctx, "u-carol", h.id)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestHouseholdReport(t *testing.T) {
	h := newHousehold(t)
	h.equalExpense(t, "u-alice", "30.00")
	_, err := h.eng.CreatePayment(h.ctx, "u-bob", h.id, CreatePaymentInput{PayerID: h.bob.ID, PayeeID: h.alice.ID, Amount: dec("5.00")})
	require.NoError(t, err)

	r, err := h.eng.HouseholdReport(h.ctx, "u-carol", h.id)
	require.NoError(t, err)
	assert.Equal(t, "Flat 3B", r.Household.Name)
	assert.Len(t, r.Members, 3)
	assert.Len(t, r.Expenses, 1)
	assert.Len(t, r.Payments, 1)
	assert.Len(t, r.Settlements, 2)
}
