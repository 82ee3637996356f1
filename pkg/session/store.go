package session

import (
	"context"
	"sync"

	"github.com/edulane/edulane-go/pkg/logging"
)

// Store is the process-wide session state container. All mutation goes
// through the five transition actions below; each action runs its
// reducer and any persistence side effect under a single lock, so the
// store behaves as a strict serial queue: an action never observes
// another action mid-transition, and close-together login/logout pairs
// cannot lose updates to each other.
//
// Every action is total and idempotent under repeated identical
// dispatch. Persistence failures are logged and never surface as an
// undefined session state.
type Store struct {
	mu     sync.Mutex
	sess   Session
	slot   *Slot
	logger logging.Logger
}

// NewStore creates an empty session store. The slot is the only
// persistence the store writes to; it may be built over a nil backing
// store to disable persistence entirely.
func NewStore(slot *Slot, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewSimpleLogger("session", logging.LevelInfo, false)
	}
	return &Store{
		slot:   slot,
		logger: logger,
	}
}

// Snapshot returns a copy of the current session. The User pointer, if
// present, points at a copy, so readers can never mutate store state.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySessionLocked()
}

func (s *Store) copySessionLocked() Session {
	snap := s.sess
	if s.sess.User != nil {
		user := *s.sess.User
		snap.User = &user
	}
	return snap
}

// LoginStart marks a login attempt as in flight and clears any previous
// failure message.
func (s *Store) LoginStart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess.Loading = true
	s.sess.Error = ""
}

// LoginSuccess installs the authenticated session and persists the
// credential into the slot.
func (s *Store) LoginSuccess(user User, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = Session{
		IsAuthenticated: true,
		User:            &user,
		Credential:      credential,
	}

	if err := s.slot.Set(context.Background(), credential); err != nil {
		s.logger.Warn("failed to persist credential", "error", err)
	}
}

// LoginFailure records a rejected login: the session becomes
// unauthenticated with the failure message, and the persisted
// credential is cleared.
func (s *Store) LoginFailure(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = Session{Error: message}

	if err := s.slot.Clear(context.Background()); err != nil {
		s.logger.Warn("failed to clear persisted credential", "error", err)
	}
}

// Logout resets the session to empty and clears the persisted
// credential. Dispatching Logout repeatedly is harmless, which lets
// concurrent authorization failures all fire it without coordination.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = Session{}

	if err := s.slot.Clear(context.Background()); err != nil {
		s.logger.Warn("failed to clear persisted credential", "error", err)
	}
}

// RestoreFromPersisted is dispatched only by the Rehydrator. With a
// payload it installs the authenticated fields while leaving Loading
// and Error untouched; without one it resets the session to empty. It
// never writes the slot: whichever caller decided the credential was
// invalid is responsible for clearing persistence.
func (s *Store) RestoreFromPersisted(user *User, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user != nil && credential != "" {
		u := *user
		s.sess.IsAuthenticated = true
		s.sess.User = &u
		s.sess.Credential = credential
		return
	}

	s.sess = Session{}
}
