package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitDefaultsTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	before := time.Now()
	err := publisher.Emit(context.Background(), Event{
		Action: ActionEntryRegistered,
		UserID: ID(9),
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ActionEntryRegistered, events[0].Action)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.Equal(t, int64(9), *events[0].UserID)
}

func TestEmitKeepsExplicitTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	stamp := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	err := publisher.Emit(context.Background(), Event{
		Action:    ActionEntryDenied,
		Timestamp: stamp,
		Reason:    "CONTRATISTA_LISTA_NEGRA",
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, stamp, events[0].Timestamp)
}

func TestInMemoryStoreClear(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Append(context.Background(), Event{Action: ActionUserLogin}))
	require.Len(t, store.Events(), 1)

	store.Clear()
	assert.Empty(t, store.Events())
}
