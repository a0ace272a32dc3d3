// Package audit records profile mutations so the owner can see what changed
// and when. Events are emitted from the workflow and fan out to structured
// logs and an in-memory store; keep them transport-agnostic.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Action identifies what happened to the profile.
type Action string

const (
	ActionProfileCreated     Action = "profile_created"
	ActionFieldSet           Action = "field_set"
	ActionFieldCleared       Action = "field_cleared"
	ActionBankAccountAdded   Action = "bank_account_added"
	ActionBankAccountRemoved Action = "bank_account_removed"
	ActionKeyValueAdded      Action = "key_value_item_added"
	ActionKeyValueRemoved    Action = "key_value_item_removed"
	ActionSaveFailed         Action = "save_failed"
	ActionSaveRetried        Action = "save_retried"
)

// Event is one entry in the mutation trail. Detail carries a short,
// non-sensitive description (field name, account name); identifier values
// themselves are never recorded.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Field     string    `json:"field,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// InMemoryStore keeps the trail for the lifetime of the process.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}

// Publisher fans events out to the store and the logger. Emission is
// best-effort: a failing audit sink must never abort the mutation that
// triggered it.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger, now: time.Now}
}

// Emit records an event, stamping it if the caller did not.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"field", event.Field,
			"detail", event.Detail,
			"request_id", event.RequestID,
		)
	}
	if p.store == nil {
		return
	}
	if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event", "error", err)
	}
}
