package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_StampsAndStores(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	p.Emit(context.Background(), Event{Action: ActionFieldSet, Field: "tax_id"})
	p.Emit(context.Background(), Event{
		Action:    ActionBankAccountAdded,
		Detail:    "Checking",
		Timestamp: fixed.Add(time.Minute),
	})

	events, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, fixed, events[0].Timestamp, "missing timestamp is stamped")
	assert.Equal(t, fixed.Add(time.Minute), events[1].Timestamp, "caller timestamp is kept")
	assert.Equal(t, ActionFieldSet, events[0].Action)
}

func TestPublisher_NilSinksAreSafe(t *testing.T) {
	p := NewPublisher(nil, nil)
	assert.NotPanics(t, func() {
		p.Emit(context.Background(), Event{Action: ActionProfileCreated})
	})
}

func TestInMemoryStore_ListCopies(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Append(context.Background(), Event{Action: ActionProfileCreated}))

	events, err := store.List(context.Background())
	require.NoError(t, err)
	events[0].Action = ActionSaveFailed

	again, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActionProfileCreated, again[0].Action)
}
