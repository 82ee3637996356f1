package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edulane/edulane-go/pkg/credential"
	"github.com/edulane/edulane-go/pkg/logging"
)

// Rehydrator reconstructs the session from the persistent slot at
// process start. Run executes the procedure exactly once regardless of
// how many times it is called; the readiness flag flips to true exactly
// once, after the single dispatch, and never back. Route guards must
// not make redirect decisions until Ready reports true.
type Rehydrator struct {
	store  *Store
	slot   *Slot
	logger logging.Logger
	now    func() time.Time

	once  sync.Once
	ready atomic.Bool
	done  chan struct{}
}

// NewRehydrator creates a Rehydrator for the given store and slot.
func NewRehydrator(store *Store, slot *Slot, logger logging.Logger) *Rehydrator {
	if logger == nil {
		logger = logging.NewSimpleLogger("rehydrate", logging.LevelInfo, false)
	}
	return &Rehydrator{
		store:  store,
		slot:   slot,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Run performs rehydration. Only the first call does anything; later
// calls return immediately with the session unchanged.
func (r *Rehydrator) Run(ctx context.Context) {
	r.once.Do(func() {
		r.rehydrate(ctx)
		r.ready.Store(true)
		close(r.done)
	})
}

// Ready reports whether rehydration has completed. It starts false and
// becomes true exactly once.
func (r *Rehydrator) Ready() bool {
	return r.ready.Load()
}

// Done returns a channel closed when rehydration has completed, for
// hosts that want to block instead of poll.
func (r *Rehydrator) Done() <-chan struct{} {
	return r.done
}

func (r *Rehydrator) rehydrate(ctx context.Context) {
	raw, ok := r.slot.Get(ctx)
	if !ok {
		r.logger.Debug("no persisted credential")
		r.store.RestoreFromPersisted(nil, "")
		return
	}

	claims, err := credential.Decode(raw)
	if err != nil {
		r.logger.Warn("persisted credential is malformed, clearing", "error", err)
		r.clearAndReset(ctx)
		return
	}

	if claims.IsExpired(r.now()) {
		r.logger.Info("persisted credential expired, clearing", "subject", claims.Username())
		r.clearAndReset(ctx)
		return
	}

	user := UserFromClaims(claims)
	r.store.RestoreFromPersisted(&user, raw)
	r.logger.Info("session restored", "subject", claims.Username())
}

func (r *Rehydrator) clearAndReset(ctx context.Context) {
	if err := r.slot.Clear(ctx); err != nil {
		r.logger.Warn("failed to clear persisted credential", "error", err)
	}
	r.store.RestoreFromPersisted(nil, "")
}

// UserFromClaims derives the session's user record from decoded claims.
// Profile timestamps are not carried in the credential, so they stay
// zero until the profile endpoint is consulted.
func UserFromClaims(c *credential.Claims) User {
	return User{
		ID:         c.UserID,
		Username:   c.Username(),
		Email:      c.Email,
		IsEducator: c.IsEducator,
		IsActive:   c.IsActive,
	}
}
