// Package events defines the domain events the engine emits after a
// transaction commits, and the publishers that receive them.
package events

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Kind names a domain event.
type Kind string

const (
	HouseholdCreated Kind = "household_created"
	MemberAdded      Kind = "member_added"
	MemberRemoved    Kind = "member_removed"
	ExpenseCreated   Kind = "expense_created"
	ExpenseSplitsSet Kind = "expense_splits_updated"
	ExpenseDeleted   Kind = "expense_deleted"
	SharePaid        Kind = "share_paid"
	ShareUnpaid      Kind = "share_unpaid"
	PaymentCreated   Kind = "payment_created"
	PaymentLinked    Kind = "payment_linked"
	PaymentUnlinked  Kind = "payment_unlinked"
	PaymentDeleted   Kind = "payment_deleted"
)

// Event is something that happened to a household.
type Event struct {
	Kind        Kind
	HouseholdID string
	// ActorID is the membership that caused the event, empty for system actions.
	ActorID string
	// EntityID is the expense, share, payment or membership the event is about.
	EntityID string
	// Attrs carries event-specific details (amounts, related IDs).
	Attrs map[string]string
}

// Publisher receives committed events. Implementations must not block for long;
// they run on the request path.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Multi fans out events to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) {
	for _, p := range m {
		p.Publish(ctx, e)
	}
}

// LogPublisher writes each event to a structured logger.
type LogPublisher struct {
	Logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger uses slog.Default().
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) {
	args := []any{
		"event", string(e.Kind),
		"household_id", e.HouseholdID,
		"actor_id", e.ActorID,
		"entity_id", e.EntityID,
	}
	for k, v := range e.Attrs {
		args = append(args, k, v)
	}
	p.Logger.InfoContext(ctx, "Domain event", args...)
}

// MetricsPublisher counts events per kind.
type MetricsPublisher struct {
	events *prometheus.CounterVec
}

// NewMetricsPublisher registers the event counter with reg.
func NewMetricsPublisher(reg prometheus.Registerer) *MetricsPublisher {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hearthledger",
		Name:      "domain_events_total",
		Help:      "Committed domain events by kind.",
	}, []string{"kind"})
	reg.MustRegister(events)
	return &MetricsPublisher{events: events}
}

func (p *MetricsPublisher) Publish(_ context.Context, e Event) {
	p.events.WithLabelValues(string(e.Kind)).Inc()
}

// Recorder keeps published events in memory. Tests use it to assert on what
// the engine emitted.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.Events = append(r.Events, e)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	kinds := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}
	return kinds
}
