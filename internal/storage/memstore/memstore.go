// Package memstore provides an in-memory implementation of storage.Store for
// development and tests.
package memstore

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps every table in maps. A transaction works on a copy of the tables
// that replaces the originals on commit; the store mutex is held for the whole
// transaction.
type Store struct {
	mu   sync.Mutex
	data *tables
}

type tables struct {
	seq         int64
	order       map[string]int64
	households  map[string]models.Household
	memberships map[string]models.Membership
	expenses    map[string]models.Expense
	shares      map[string]models.ExpenseShare
	payments    map[string]models.Payment
	allocations map[string]models.Allocation
}

// New creates an empty store.
func New() *Store {
	return &Store{data: &tables{
		order:       make(map[string]int64),
		households:  make(map[string]models.Household),
		memberships: make(map[string]models.Membership),
		expenses:    make(map[string]models.Expense),
		shares:      make(map[string]models.ExpenseShare),
		payments:    make(map[string]models.Payment),
		allocations: make(map[string]models.Allocation),
	}}
}

func (t *tables) clone() *tables {
	return &tables{
		seq:         t.seq,
		order:       maps.Clone(t.order),
		households:  maps.Clone(t.households),
		memberships: maps.Clone(t.memberships),
		expenses:    maps.Clone(t.expenses),
		shares:      maps.Clone(t.shares),
		payments:    maps.Clone(t.payments),
		allocations: maps.Clone(t.allocations),
	}
}

// WithTx runs fn against a private copy of the tables and publishes the copy
// when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	if err := fn(&txn{t: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

type txn struct {
	t *tables
}

// isActive is the single visibility rule for reads.
func isActive(state models.State) bool {
	return state.Active()
}

func (x *txn) track(id string) {
	x.t.seq++
	x.t.order[id] = x.t.seq
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func orActive(s *models.State) {
	if *s == "" {
		*s = models.StateActive
	}
}

func (x *txn) CreateHousehold(_ context.Context, h *models.Household) error {
	newID(&h.ID)
	h.CreatedAt = orNow(h.CreatedAt)
	orActive(&h.State)
	x.t.households[h.ID] = *h
	x.track(h.ID)
	return nil
}

func (x *txn) GetHousehold(_ context.Context, id string) (*models.Household, error) {
	h, ok := x.t.households[id]
	if !ok || !isActive(h.State) {
		return nil, apperr.NotFound("household", id)
	}
	return &h, nil
}

func (x *txn) CreateMembership(_ context.Context, m *models.Membership) error {
	newID(&m.ID)
	m.JoinedAt = orNow(m.JoinedAt)
	orActive(&m.State)
	x.t.memberships[m.ID] = *m
	x.track(m.ID)
	return nil
}

func (x *txn) GetMembership(_ context.Context, id string) (*models.Membership, error) {
	m, ok := x.t.memberships[id]
	if !ok || !isActive(m.State) {
		return nil, apperr.NotFound("membership", id)
	}
	return &m, nil
}

func (x *txn) GetMembershipByUser(ctx context.Context, householdID, userID string) (*models.Membership, error) {
	members, _ := x.ListMemberships(ctx, householdID)
	for _, m := range members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, apperr.NotFound("membership", userID)
}

func (x *txn) ListMemberships(_ context.Context, householdID string) ([]*models.Membership, error) {
	var out []*models.Membership
	for _, m := range x.t.memberships {
		if m.HouseholdID == householdID && isActive(m.State) {
			out = append(out, &m)
		}
	}
	x.sortByOrder(len(out), func(i int) string { return out[i].ID }, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func (x *txn) UpdateMembership(_ context.Context, m *models.Membership) error {
	cur, ok := x.t.memberships[m.ID]
	if !ok || !isActive(cur.State) {
		return apperr.NotFound("membership", m.ID)
	}
	cur.DisplayName = m.DisplayName
	cur.Role = m.Role
	cur.State = m.State
	x.t.memberships[m.ID] = cur
	return nil
}

func (x *txn) CreateExpense(ctx context.Context, e *models.Expense) error {
	newID(&e.ID)
	e.CreatedAt = orNow(e.CreatedAt)
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = e.CreatedAt
	}
	orActive(&e.State)

	row := *e
	row.Shares = nil
	x.t.expenses[e.ID] = row
	x.track(e.ID)
	return x.AddShares(ctx, e.ID, e.Shares)
}

func (x *txn) AddShares(_ context.Context, expenseID string, shares []models.ExpenseShare) error {
	for i := range shares {
		s := &shares[i]
		newID(&s.ID)
		s.ExpenseID = expenseID
		orActive(&s.State)
		x.t.shares[s.ID] = *s
		x.track(s.ID)
	}
	return nil
}

func (x *txn) expenseWithShares(e models.Expense) *models.Expense {
	for _, s := range x.sharesWhere(func(s models.ExpenseShare) bool { return s.ExpenseID == e.ID }) {
		e.Shares = append(e.Shares, *s)
	}
	return &e
}

func (x *txn) GetExpense(_ context.Context, id string) (*models.Expense, error) {
	e, ok := x.t.expenses[id]
	if !ok || !isActive(e.State) {
		return nil, apperr.NotFound("expense", id)
	}
	return x.expenseWithShares(e), nil
}

func (x *txn) ListExpenses(_ context.Context, householdID string) ([]*models.Expense, error) {
	var out []*models.Expense
	for _, e := range x.t.expenses {
		if e.HouseholdID == householdID && isActive(e.State) {
			out = append(out, x.expenseWithShares(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.Before(out[j].ExpenseDate)
		}
		return x.t.order[out[i].ID] < x.t.order[out[j].ID]
	})
	return out, nil
}

func (x *txn) UpdateExpense(_ context.Context, e *models.Expense) error {
	cur, ok := x.t.expenses[e.ID]
	if !ok || !isActive(cur.State) {
		return apperr.NotFound("expense", e.ID)
	}
	cur.Description = e.Description
	cur.Amount = e.Amount
	cur.Category = e.Category
	cur.Method = e.Method
	cur.ExpenseDate = e.ExpenseDate
	cur.State = e.State
	x.t.expenses[e.ID] = cur
	return nil
}

func (x *txn) GetShare(_ context.Context, id string) (*models.ExpenseShare, error) {
	s, ok := x.t.shares[id]
	if !ok || !isActive(s.State) {
		return nil, apperr.NotFound("expense share", id)
	}
	return &s, nil
}

func (x *txn) UpdateShare(_ context.Context, s *models.ExpenseShare) error {
	cur, ok := x.t.shares[s.ID]
	if !ok || !isActive(cur.State) {
		return apperr.NotFound("expense share", s.ID)
	}
	cur.Paid = s.Paid
	cur.PaidAt = s.PaidAt
	cur.PaymentMethod = s.PaymentMethod
	cur.Notes = s.Notes
	cur.State = s.State
	x.t.shares[s.ID] = cur
	return nil
}

func (x *txn) ListSharesByMembership(_ context.Context, membershipID string) ([]*models.ExpenseShare, error) {
	return x.sharesWhere(func(s models.ExpenseShare) bool { return s.MembershipID == membershipID }), nil
}

func (x *txn) sharesWhere(match func(models.ExpenseShare) bool) []*models.ExpenseShare {
	var out []*models.ExpenseShare
	for _, s := range x.t.shares {
		if match(s) && isActive(s.State) {
			out = append(out, &s)
		}
	}
	x.sortByOrder(len(out), func(i int) string { return out[i].ID }, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (x *txn) CreatePayment(_ context.Context, p *models.Payment) error {
	newID(&p.ID)
	p.CreatedAt = orNow(p.CreatedAt)
	if p.PaymentDate.IsZero() {
		p.PaymentDate = p.CreatedAt
	}
	orActive(&p.State)

	row := *p
	row.Allocations = nil
	x.t.payments[p.ID] = row
	x.track(p.ID)
	return nil
}

func (x *txn) paymentWithAllocations(p models.Payment) *models.Payment {
	for _, a := range x.allocationsWhere(func(a models.Allocation) bool { return a.PaymentID == p.ID }) {
		p.Allocations = append(p.Allocations, *a)
	}
	return &p
}

func (x *txn) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	p, ok := x.t.payments[id]
	if !ok || !isActive(p.State) {
		return nil, apperr.NotFound("payment", id)
	}
	return x.paymentWithAllocations(p), nil
}

func (x *txn) ListPayments(_ context.Context, householdID string) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range x.t.payments {
		if p.HouseholdID == householdID && isActive(p.State) {
			out = append(out, x.paymentWithAllocations(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return x.t.order[out[i].ID] > x.t.order[out[j].ID]
	})
	return out, nil
}

func (x *txn) UpdatePayment(_ context.Context, p *models.Payment) error {
	cur, ok := x.t.payments[p.ID]
	if !ok || !isActive(cur.State) {
		return apperr.NotFound("payment", p.ID)
	}
	cur.Method = p.Method
	cur.Description = p.Description
	cur.State = p.State
	x.t.payments[p.ID] = cur
	return nil
}

func (x *txn) CreateAllocation(_ context.Context, a *models.Allocation) error {
	newID(&a.ID)
	a.CreatedAt = orNow(a.CreatedAt)
	orActive(&a.State)
	x.t.allocations[a.ID] = *a
	x.track(a.ID)
	return nil
}

func (x *txn) UpdateAllocation(_ context.Context, a *models.Allocation) error {
	cur, ok := x.t.allocations[a.ID]
	if !ok || !isActive(cur.State) {
		return apperr.NotFound("payment allocation", a.ID)
	}
	cur.State = a.State
	x.t.allocations[a.ID] = cur
	return nil
}

func (x *txn) ListAllocationsByShare(_ context.Context, shareID string) ([]*models.Allocation, error) {
	return x.allocationsWhere(func(a models.Allocation) bool { return a.ShareID == shareID }), nil
}

func (x *txn) allocationsWhere(match func(models.Allocation) bool) []*models.Allocation {
	var out []*models.Allocation
	for _, a := range x.t.allocations {
		if match(a) && isActive(a.State) {
			out = append(out, &a)
		}
	}
	x.sortByOrder(len(out), func(i int) string { return out[i].ID }, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// sortByOrder sorts a result slice into insertion order.
func (x *txn) sortByOrder(n int, id func(int) string, swap func(i, j int)) {
	sort.Sort(byOrder{n: n, id: id, swap: swap, order: x.t.order})
}

type byOrder struct {
	n     int
	id    func(int) string
	swap  func(i, j int)
	order map[string]int64
}

func (b byOrder) Len() int           { return b.n }
func (b byOrder) Less(i, j int) bool { return b.order[b.id(i)] < b.order[b.id(j)] }
func (b byOrder) Swap(i, j int)      { b.swap(i, j) }
