// Package engine is the entry point for every household operation. It resolves
// the acting member, checks permissions, runs each operation in one storage
// transaction and publishes domain events once the transaction has committed.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hearthledger/internal/allocator"
	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/events"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// DefaultCurrency is used for households created without a currency.
const DefaultCurrency = "USD"

// Engine implements the household operations on top of a storage.Store.
type Engine struct {
	store           storage.Store
	alloc           *allocator.Allocator
	publisher       events.Publisher
	now             func() time.Time
	defaultCurrency string
}

// Option configures an Engine.
type Option func(*Engine)

// WithAllocator sets the payment allocator.
func WithAllocator(a *allocator.Allocator) Option {
	return func(e *Engine) { e.alloc = a }
}

// WithPublisher sets where committed events go.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDefaultCurrency sets the currency for households created without one.
func WithDefaultCurrency(code string) Option {
	return func(e *Engine) { e.defaultCurrency = strings.ToUpper(code) }
}

// New creates an Engine over store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		publisher:       events.Nop{},
		now:             time.Now,
		defaultCurrency: DefaultCurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.alloc == nil {
		e.alloc = allocator.New(allocator.WithClock(e.now))
	}
	return e
}

// emitFunc queues an event for publication after commit.
type emitFunc func(events.Event)

// run executes fn in a transaction and publishes the events it emitted once
// the transaction has committed. Nothing is published on rollback.
func (e *Engine) run(ctx context.Context, fn func(tx storage.Tx, emit emitFunc) error) error {
	var pending []events.Event
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		pending = pending[:0]
		return fn(tx, func(ev events.Event) { pending = append(pending, ev) })
	})
	if err != nil {
		return err
	}
	for _, ev := range pending {
		e.publisher.Publish(ctx, ev)
	}
	return nil
}

// actorIn resolves the active membership of userID in a household.
func actorIn(ctx context.Context, tx storage.Tx, householdID, userID string) (*models.Membership, error) {
	if _, err := tx.GetHousehold(ctx, householdID); err != nil {
		return nil, err
	}
	m, err := tx.GetMembershipByUser(ctx, householdID, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Permission("user %s is not a member of household %s", userID, householdID)
	}
	return m, err
}

// activeMember loads a membership and checks it belongs to the household.
func activeMember(ctx context.Context, tx storage.Tx, householdID, membershipID string) (*models.Membership, error) {
	m, err := tx.GetMembership(ctx, membershipID)
	if apperr.Is(err, apperr.KindNotFound) || (err == nil && m.HouseholdID != householdID) {
		return nil, apperr.Validation("%s is not an active member of household %s", membershipID, householdID)
	}
	return m, err
}

func checkMoney(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation("%s must be positive, got %s", field, amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperr.Validation("%s %s has more than 2 decimal places", field, amount)
	}
	return nil
}

func normalizeCurrency(code, fallback string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback, nil
	}
	if len(code) != 3 {
		return "", apperr.Validation("currency must be a 3-letter ISO 4217 code, got %q", code)
	}
	return code, nil
}

func attrs(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}
