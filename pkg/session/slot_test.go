package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/edulane-go/pkg/kvs"
)

func TestSlotRoundTrip(t *testing.T) {
	backing, err := kvs.NewMemoryStore("slot-test", kvs.MemoryConfig{})
	require.NoError(t, err)
	defer func() { _ = backing.Close() }()

	slot := NewSlot(backing)
	ctx := context.Background()

	_, ok := slot.Get(ctx)
	assert.False(t, ok, "fresh slot is empty")

	require.NoError(t, slot.Set(ctx, "first"))
	raw, ok := slot.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "first", raw)

	// Single slot: a second write replaces the first.
	require.NoError(t, slot.Set(ctx, "second"))
	raw, ok = slot.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "second", raw)

	require.NoError(t, slot.Clear(ctx))
	_, ok = slot.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, slot.Clear(ctx), "clearing an empty slot is not an error")
}

func TestSlotWithoutPersistence(t *testing.T) {
	// A slot over a nil store models environments without persistent
	// storage: every operation is a no-op reporting absent.
	slot := NewSlot(nil)
	ctx := context.Background()

	_, ok := slot.Get(ctx)
	assert.False(t, ok)
	assert.NoError(t, slot.Set(ctx, "ignored"))
	_, ok = slot.Get(ctx)
	assert.False(t, ok)
	assert.NoError(t, slot.Clear(ctx))
}
