package allocator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
	"github.com/mmynk/hearthledger/internal/storage/memstore"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store   *memstore.Store
	expense *models.Expense
	payment *models.Payment
}

// newFixture records a 60.00 expense created by alice and split between bob
// (40.00) and carol (20.00), plus a payment of paymentAmount from bob to alice.
func newFixture(t *testing.T, paymentAmount string) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New()}
	ctx := context.Background()

	err := f.store.WithTx(ctx, func(tx storage.Tx) error {
		f.expense = &models.Expense{
			HouseholdID: "h1",
			CreatedBy:   "alice",
			Description: "Utilities",
			Amount:      dec("60.00"),
			Currency:    "EUR",
			Method:      models.SplitCustom,
			ExpenseDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Shares: []models.ExpenseShare{
				{MembershipID: "bob", Amount: dec("40.00")},
				{MembershipID: "carol", Amount: dec("20.00")},
			},
		}
		if err := tx.CreateExpense(ctx, f.expense); err != nil {
			return err
		}
		f.payment = &models.Payment{
			HouseholdID: "h1",
			PayerID:     "bob",
			PayeeID:     "alice",
			Amount:      dec(paymentAmount),
			Currency:    "EUR",
			Type:        models.PaymentReimbursement,
			Method:      "bank_transfer",
			CreatedBy:   "bob",
		}
		return tx.CreatePayment(ctx, f.payment)
	})
	require.NoError(t, err)
	return f
}

// run executes fn with freshly loaded payment and share rows.
func (f *fixture) run(t *testing.T, paymentID, shareID string, fn func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error) error {
	t.Helper()
	ctx := context.Background()
	return f.store.WithTx(ctx, func(tx storage.Tx) error {
		p, err := tx.GetPayment(ctx, paymentID)
		require.NoError(t, err)
		s, err := tx.GetShare(ctx, shareID)
		require.NoError(t, err)
		return fn(tx, p, s)
	})
}

func (f *fixture) share(t *testing.T, id string) *models.ExpenseShare {
	t.Helper()
	var s *models.ExpenseShare
	require.NoError(t, f.store.WithTx(context.Background(), func(tx storage.Tx) error {
		var err error
		s, err = tx.GetShare(context.Background(), id)
		return err
	}))
	return s
}

func (f *fixture) reload(t *testing.T, paymentID string) *models.Payment {
	t.Helper()
	var p *models.Payment
	require.NoError(t, f.store.WithTx(context.Background(), func(tx storage.Tx) error {
		var err error
		p, err = tx.GetPayment(context.Background(), paymentID)
		return err
	}))
	return p
}

func TestLink_Validation(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		kind   apperr.Kind
	}{
		{name: "zero amount", amount: "0", kind: apperr.KindValidation},
		{name: "negative amount", amount: "-1.00", kind: apperr.KindValidation},
		{name: "sub-cent amount", amount: "1.001", kind: apperr.KindValidation},
		{name: "more than the share", amount: "40.01", kind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "100.00")
			err := f.run(t, f.payment.ID, f.expense.Shares[0].ID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
				_, err := New().Link(context.Background(), tx, p, s, dec(tt.amount))
				return err
			})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestLink_ExceedsUnallocated(t *testing.T) {
	f := newFixture(t, "30.00")
	a := New()

	err := f.run(t, f.payment.ID, f.expense.Shares[1].ID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := a.Link(context.Background(), tx, p, s, dec("20.00"))
		return err
	})
	require.NoError(t, err)

	err = f.run(t, f.payment.ID, f.expense.Shares[0].ID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := a.Link(context.Background(), tx, p, s, dec("10.01"))
		return err
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))

	p := f.reload(t, f.payment.ID)
	assert.True(t, p.AllocatedAmount().LessThanOrEqual(p.Amount))
	assert.Equal(t, "10.00", p.UnallocatedAmount().StringFixed(2))
}

func TestLink_MarksPaidWhenCovered(t *testing.T) {
	f := newFixture(t, "100.00")
	shareID := f.expense.Shares[0].ID

	err := f.run(t, f.payment.ID, shareID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := New().Link(context.Background(), tx, p, s, dec("25.00"))
		return err
	})
	require.NoError(t, err)
	assert.False(t, f.share(t, shareID).Paid, "partial coverage leaves the share unpaid")

	// A second payment covers the rest.
	second := &models.Payment{HouseholdID: "h1", PayerID: "bob", PayeeID: "alice", Amount: dec("15.00"),
		Currency: "EUR", Type: models.PaymentExpensePayment, Method: "cash", CreatedBy: "bob"}
	require.NoError(t, f.store.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreatePayment(context.Background(), second)
	}))

	err = f.run(t, second.ID, shareID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := New().Link(context.Background(), tx, p, s, dec("15.01"))
		return err
	})
	assert.Equal(t, apperr.KindState, apperr.KindOf(err), "over-covering the share is rejected")

	err = f.run(t, second.ID, shareID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := New().Link(context.Background(), tx, p, s, dec("15.00"))
		return err
	})
	require.NoError(t, err)

	s := f.share(t, shareID)
	assert.True(t, s.Paid)
	assert.Equal(t, "cash", s.PaymentMethod)
	assert.NotNil(t, s.PaidAt)
}

func TestLink_Mismatches(t *testing.T) {
	f := newFixture(t, "100.00")
	other := &models.Payment{HouseholdID: "h2", PayerID: "x", PayeeID: "y", Amount: dec("10.00"), Currency: "EUR", Type: models.PaymentAdjustment}
	usd := &models.Payment{HouseholdID: "h1", PayerID: "bob", PayeeID: "alice", Amount: dec("10.00"), Currency: "USD", Type: models.PaymentAdjustment}
	require.NoError(t, f.store.WithTx(context.Background(), func(tx storage.Tx) error {
		if err := tx.CreatePayment(context.Background(), other); err != nil {
			return err
		}
		return tx.CreatePayment(context.Background(), usd)
	}))

	for _, id := range []string{other.ID, usd.ID} {
		err := f.run(t, id, f.expense.Shares[1].ID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
			_, err := New().Link(context.Background(), tx, p, s, dec("5.00"))
			return err
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestLink_Twice(t *testing.T) {
	f := newFixture(t, "100.00")
	link := func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := New().Link(context.Background(), tx, p, s, dec("5.00"))
		return err
	}
	require.NoError(t, f.run(t, f.payment.ID, f.expense.Shares[1].ID, link))
	err := f.run(t, f.payment.ID, f.expense.Shares[1].ID, link)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))
}

func TestUnlink_Policies(t *testing.T) {
	tests := []struct {
		policy   UnlinkPolicy
		wantPaid bool
	}{
		{policy: UnlinkKeep, wantPaid: true},
		{policy: UnlinkRevert, wantPaid: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			f := newFixture(t, "100.00")
			a := New(WithUnlinkPolicy(tt.policy))
			shareID := f.expense.Shares[1].ID

			require.NoError(t, f.run(t, f.payment.ID, shareID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
				_, err := a.Link(context.Background(), tx, p, s, dec("20.00"))
				return err
			}))
			require.True(t, f.share(t, shareID).Paid)

			require.NoError(t, f.run(t, f.payment.ID, shareID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
				_, err := a.Unlink(context.Background(), tx, p, s)
				return err
			}))

			assert.Equal(t, tt.wantPaid, f.share(t, shareID).Paid)
			assert.True(t, f.reload(t, f.payment.ID).UnallocatedAmount().Equal(dec("100.00")))
		})
	}
}

func TestUnlink_Missing(t *testing.T) {
	f := newFixture(t, "100.00")
	err := f.run(t, f.payment.ID, f.expense.Shares[0].ID, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := New().Unlink(context.Background(), tx, p, s)
		return err
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeletePayment_RevertsOnlyUnbackedShares(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()
	bobShare, carolShare := f.expense.Shares[0].ID, f.expense.Shares[1].ID

	// Carol's share is covered by the first payment and by her own payment.
	carolPays := &models.Payment{HouseholdID: "h1", PayerID: "carol", PayeeID: "alice", Amount: dec("10.00"),
		Currency: "EUR", Type: models.PaymentReimbursement, CreatedBy: "carol"}
	require.NoError(t, f.store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.CreatePayment(ctx, carolPays)
	}))

	a := New()
	require.NoError(t, f.run(t, f.payment.ID, bobShare, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := a.Link(ctx, tx, p, s, dec("40.00"))
		return err
	}))
	require.NoError(t, f.run(t, carolPays.ID, carolShare, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := a.Link(ctx, tx, p, s, dec("10.00"))
		return err
	}))
	require.NoError(t, f.run(t, f.payment.ID, carolShare, func(tx storage.Tx, p *models.Payment, s *models.ExpenseShare) error {
		_, err := a.Link(ctx, tx, p, s, dec("10.00"))
		return err
	}))
	require.True(t, f.share(t, bobShare).Paid)
	require.True(t, f.share(t, carolShare).Paid)

	var reverted []*models.ExpenseShare
	require.NoError(t, f.store.WithTx(ctx, func(tx storage.Tx) error {
		p, err := tx.GetPayment(ctx, f.payment.ID)
		if err != nil {
			return err
		}
		reverted, err = a.DeletePayment(ctx, tx, p)
		return err
	}))

	require.Len(t, reverted, 1)
	assert.Equal(t, bobShare, reverted[0].ID)
	assert.False(t, f.share(t, bobShare).Paid, "share without other backing is reverted")
	assert.True(t, f.share(t, carolShare).Paid, "share still backed by another payment stays paid")

	require.NoError(t, f.store.WithTx(ctx, func(tx storage.Tx) error {
		_, err := tx.GetPayment(ctx, f.payment.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		allocs, err := tx.ListAllocationsByShare(ctx, carolShare)
		require.NoError(t, err)
		require.Len(t, allocs, 1)
		assert.Equal(t, carolPays.ID, allocs[0].PaymentID)
		return nil
	}))
}

func TestAutoAllocate(t *testing.T) {
	f := newFixture(t, "50.00")
	ctx := context.Background()

	// A later expense by alice where bob owes 15.00, and one by carol that the
	// payment to alice must not touch.
	require.NoError(t, f.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.CreateExpense(ctx, &models.Expense{
			HouseholdID: "h1", CreatedBy: "alice", Amount: dec("30.00"), Currency: "EUR", Method: models.SplitEqual,
			ExpenseDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Shares: []models.ExpenseShare{
				{MembershipID: "alice", Amount: dec("15.00")},
				{MembershipID: "bob", Amount: dec("15.00")},
			},
		}); err != nil {
			return err
		}
		return tx.CreateExpense(ctx, &models.Expense{
			HouseholdID: "h1", CreatedBy: "carol", Amount: dec("10.00"), Currency: "EUR", Method: models.SplitCustom,
			ExpenseDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			Shares:      []models.ExpenseShare{{MembershipID: "bob", Amount: dec("10.00")}},
		})
	}))

	var created []*models.Allocation
	require.NoError(t, f.store.WithTx(ctx, func(tx storage.Tx) error {
		p, err := tx.GetPayment(ctx, f.payment.ID)
		if err != nil {
			return err
		}
		created, err = New().AutoAllocate(ctx, tx, p)
		return err
	}))

	require.Len(t, created, 2)
	assert.Equal(t, f.expense.Shares[0].ID, created[0].ShareID, "oldest expense first")
	assert.Equal(t, "40.00", created[0].Amount.StringFixed(2))
	assert.Equal(t, "10.00", created[1].Amount.StringFixed(2))

	p := f.reload(t, f.payment.ID)
	assert.True(t, p.UnallocatedAmount().IsZero())
	assert.True(t, f.share(t, f.expense.Shares[0].ID).Paid)
	assert.False(t, f.share(t, created[1].ShareID).Paid, "15.00 share is only partly covered")
}

func TestParseUnlinkPolicy(t *testing.T) {
	p, err := ParseUnlinkPolicy("")
	require.NoError(t, err)
	assert.Equal(t, UnlinkKeep, p)

	p, err = ParseUnlinkPolicy("revert")
	require.NoError(t, err)
	assert.Equal(t, UnlinkRevert, p)

	_, err = ParseUnlinkPolicy("sometimes")
	assert.Error(t, err)
}
