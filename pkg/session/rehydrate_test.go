package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/edulane-go/pkg/credential"
	"github.com/edulane/edulane-go/pkg/kvs"
	"github.com/edulane/edulane-go/pkg/logging"
)

func signToken(t *testing.T, username string, educator bool, expiresAt time.Time) string {
	t.Helper()
	claims := &credential.Claims{
		UserID:     42,
		Email:      username + "@example.com",
		IsEducator: educator,
		IsActive:   true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func newRehydrationFixture(t *testing.T) (*Store, *Slot, *Rehydrator) {
	t.Helper()
	backing, err := kvs.NewMemoryStore("rehydrate-test", kvs.MemoryConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })

	slot := NewSlot(backing)
	store := NewStore(slot, logging.NewTestLogger())
	return store, slot, NewRehydrator(store, slot, logging.NewTestLogger())
}

func TestRehydrateEmptySlot(t *testing.T) {
	store, _, rehydrator := newRehydrationFixture(t)

	assert.False(t, rehydrator.Ready())
	rehydrator.Run(context.Background())

	assert.True(t, rehydrator.Ready())
	assert.Equal(t, Session{}, store.Snapshot(), "fresh start leaves the session empty")
}

func TestRehydrateValidCredential(t *testing.T) {
	store, slot, rehydrator := newRehydrationFixture(t)
	ctx := context.Background()

	raw := signToken(t, "alice", true, time.Now().Add(time.Hour))
	require.NoError(t, slot.Set(ctx, raw))

	rehydrator.Run(ctx)

	snap := store.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, raw, snap.Credential)
	require.NotNil(t, snap.User)
	assert.Equal(t, "alice", snap.User.Username)
	assert.Equal(t, "alice@example.com", snap.User.Email)
	assert.True(t, snap.User.IsEducator)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	persisted, ok := slot.Get(ctx)
	require.True(t, ok, "a valid credential stays persisted")
	assert.Equal(t, raw, persisted)
}

func TestRehydrateExpiredCredential(t *testing.T) {
	store, slot, rehydrator := newRehydrationFixture(t)
	ctx := context.Background()

	raw := signToken(t, "alice", false, time.Now().Add(-time.Minute))
	require.NoError(t, slot.Set(ctx, raw))

	rehydrator.Run(ctx)

	assert.Equal(t, Session{}, store.Snapshot())
	_, ok := slot.Get(ctx)
	assert.False(t, ok, "expired credential must be cleared so the next start finds nothing")

	// The next process start sees an empty slot.
	store2 := NewStore(slot, logging.NewTestLogger())
	NewRehydrator(store2, slot, logging.NewTestLogger()).Run(ctx)
	assert.Equal(t, Session{}, store2.Snapshot())
}

func TestRehydrateMalformedCredential(t *testing.T) {
	store, slot, rehydrator := newRehydrationFixture(t)
	ctx := context.Background()

	require.NoError(t, slot.Set(ctx, "this is not a token"))

	rehydrator.Run(ctx)

	assert.Equal(t, Session{}, store.Snapshot())
	_, ok := slot.Get(ctx)
	assert.False(t, ok, "malformed credential must be cleared")
}

func TestRehydrateRunsOnce(t *testing.T) {
	store, slot, rehydrator := newRehydrationFixture(t)
	ctx := context.Background()

	raw := signToken(t, "alice", false, time.Now().Add(time.Hour))
	require.NoError(t, slot.Set(ctx, raw))

	rehydrator.Run(ctx)
	first := store.Snapshot()

	// A second run is a no-op, and mutating the slot in between must
	// not leak into the already-restored session.
	require.NoError(t, slot.Set(ctx, "tampered"))
	rehydrator.Run(ctx)

	assert.Equal(t, first, store.Snapshot(), "rehydration must be idempotent")
}

func TestRehydrateReadiness(t *testing.T) {
	_, _, rehydrator := newRehydrationFixture(t)

	assert.False(t, rehydrator.Ready(), "readiness starts false")
	select {
	case <-rehydrator.Done():
		t.Fatal("done channel closed before Run")
	default:
	}

	rehydrator.Run(context.Background())

	assert.True(t, rehydrator.Ready())
	select {
	case <-rehydrator.Done():
	default:
		t.Fatal("done channel should be closed after Run")
	}
}

func TestUserFromClaims(t *testing.T) {
	raw := signToken(t, "carol", true, time.Now().Add(time.Hour))
	claims, err := credential.Decode(raw)
	require.NoError(t, err)

	user := UserFromClaims(claims)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.True(t, user.IsEducator)
	assert.True(t, user.IsActive)
	assert.True(t, user.CreatedAt.IsZero(), "profile timestamps are not carried in claims")
}
