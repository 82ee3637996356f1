package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/edulane-go/pkg/kvs"
	"github.com/edulane/edulane-go/pkg/logging"
)

func newTestStore(t *testing.T) (*Store, *Slot) {
	t.Helper()
	backing, err := kvs.NewMemoryStore("session-test", kvs.MemoryConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })

	slot := NewSlot(backing)
	return NewStore(slot, logging.NewTestLogger()), slot
}

func testUser() User {
	return User{
		ID:         1,
		Username:   "alice",
		Email:      "alice@example.com",
		IsEducator: false,
		IsActive:   true,
	}
}

func TestLoginStart(t *testing.T) {
	store, _ := newTestStore(t)

	store.LoginFailure("bad password")
	store.LoginStart()

	snap := store.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Error, "starting a login clears the previous failure message")
	assert.False(t, snap.IsAuthenticated)
}

func TestLoginSuccess(t *testing.T) {
	store, slot := newTestStore(t)

	store.LoginStart()
	store.LoginSuccess(testUser(), "raw-credential")

	snap := store.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.User)
	assert.Equal(t, "alice", snap.User.Username)
	assert.Equal(t, "raw-credential", snap.Credential)

	raw, ok := slot.Get(context.Background())
	require.True(t, ok, "successful login must persist the credential")
	assert.Equal(t, "raw-credential", raw)
}

func TestLoginFailure(t *testing.T) {
	store, slot := newTestStore(t)

	store.LoginSuccess(testUser(), "raw-credential")
	store.LoginStart()
	store.LoginFailure("incorrect username or password")

	snap := store.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Credential)
	assert.Equal(t, "incorrect username or password", snap.Error)

	_, ok := slot.Get(context.Background())
	assert.False(t, ok, "login failure must clear the persisted credential")
}

func TestLogout(t *testing.T) {
	store, slot := newTestStore(t)

	store.LoginSuccess(testUser(), "raw-credential")
	store.Logout()

	snap := store.Snapshot()
	assert.Equal(t, Session{}, snap, "logout resets to the empty session")

	_, ok := slot.Get(context.Background())
	assert.False(t, ok, "logout must clear the persisted credential")
}

func TestLogoutIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	store.LoginSuccess(testUser(), "raw-credential")
	store.Logout()
	first := store.Snapshot()

	store.Logout()
	store.Logout()

	assert.Equal(t, first, store.Snapshot(), "repeated logout dispatch must be a no-op")
}

func TestRestoreFromPersisted(t *testing.T) {
	t.Run("with payload", func(t *testing.T) {
		store, slot := newTestStore(t)
		user := testUser()

		store.LoginStart() // Loading=true must survive a restore
		store.RestoreFromPersisted(&user, "persisted-credential")

		snap := store.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		assert.Equal(t, "persisted-credential", snap.Credential)
		require.NotNil(t, snap.User)
		assert.Equal(t, user.Username, snap.User.Username)
		assert.True(t, snap.Loading, "restore must not touch Loading")

		_, ok := slot.Get(context.Background())
		assert.False(t, ok, "restore itself never writes the slot")
	})

	t.Run("absent payload", func(t *testing.T) {
		store, _ := newTestStore(t)

		store.LoginSuccess(testUser(), "raw-credential")
		store.RestoreFromPersisted(nil, "")

		assert.Equal(t, Session{}, store.Snapshot())
	})
}

func TestSnapshotIsACopy(t *testing.T) {
	store, _ := newTestStore(t)
	store.LoginSuccess(testUser(), "raw-credential")

	snap := store.Snapshot()
	snap.User.Username = "mallory"
	snap.Credential = "forged"

	fresh := store.Snapshot()
	assert.Equal(t, "alice", fresh.User.Username, "mutating a snapshot must not affect the store")
	assert.Equal(t, "raw-credential", fresh.Credential)
}

func TestAuthenticatedInvariant(t *testing.T) {
	store, _ := newTestStore(t)

	check := func(label string) {
		snap := store.Snapshot()
		both := snap.User != nil && snap.Credential != ""
		assert.Equal(t, snap.IsAuthenticated, both,
			"%s: IsAuthenticated must hold iff user and credential are both present", label)
	}

	check("empty")
	store.LoginStart()
	check("after LoginStart")
	store.LoginSuccess(testUser(), "c")
	check("after LoginSuccess")
	store.LoginFailure("nope")
	check("after LoginFailure")
	store.LoginSuccess(testUser(), "c")
	store.Logout()
	check("after Logout")
}

func TestConcurrentDispatch(t *testing.T) {
	store, _ := newTestStore(t)
	user := testUser()

	// Concurrent logins and forced logouts must serialize: whatever
	// ordering wins, the final session must be one of the two
	// well-defined outcomes, never a blend.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.LoginSuccess(user, "credential")
		}()
		go func() {
			defer wg.Done()
			store.Logout()
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	if snap.IsAuthenticated {
		require.NotNil(t, snap.User)
		assert.Equal(t, "credential", snap.Credential)
	} else {
		assert.Nil(t, snap.User)
		assert.Empty(t, snap.Credential)
	}
}
