package session

import (
	"context"
	"errors"

	"github.com/edulane/edulane-go/pkg/kvs"
)

// DefaultSlotKey is the single persistence key holding the raw
// credential string.
const DefaultSlotKey = "access_token"

// Slot is the single-slot persistent credential store: one named key,
// last write wins. A Slot built over a nil backing store degrades every
// operation to a no-op that reports the credential as absent, for
// environments where persistent storage is unavailable.
type Slot struct {
	store kvs.Store
	key   string
}

// NewSlot creates a Slot over the given backing store. A nil store is
// allowed and disables persistence.
func NewSlot(store kvs.Store) *Slot {
	return &Slot{store: store, key: DefaultSlotKey}
}

// Get returns the persisted raw credential, or ok=false when the slot
// is empty, persistence is unavailable, or the read fails.
func (s *Slot) Get(ctx context.Context) (raw string, ok bool) {
	if s == nil || s.store == nil {
		return "", false
	}

	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set writes the raw credential into the slot, replacing any previous
// value. No-op without persistence.
func (s *Slot) Set(ctx context.Context, raw string) error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Set(ctx, s.key, []byte(raw), 0)
}

// Clear empties the slot. No-op without persistence; clearing an
// already empty slot is not an error.
func (s *Slot) Clear(ctx context.Context) error {
	if s == nil || s.store == nil {
		return nil
	}

	err := s.store.Delete(ctx, s.key)
	if errors.Is(err, kvs.ErrNotFound) {
		return nil
	}
	return err
}
