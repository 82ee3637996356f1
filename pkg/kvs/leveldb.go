package kvs

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBStore is a LevelDB-backed implementation of Store. It is the
// durable backend: values written by one process invocation are visible
// to the next, which is what allows a session to survive a restart.
type LevelDBStore struct {
	db              *leveldb.DB
	closed          bool
	mu              sync.RWMutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupDone     chan struct{}
}

// NewLevelDBStore opens (or creates) a LevelDB database for the given
// namespace. An empty path places the database under the OS cache dir.
func NewLevelDBStore(namespace string, cfg LevelDBConfig) (*LevelDBStore, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}

		dirName := "edulane"
		if namespace != "" {
			sanitized := strings.Map(func(r rune) rune {
				if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
					return r
				}
				return '-'
			}, namespace)
			dirName = fmt.Sprintf("%s-%s", dirName, sanitized)
		}

		dbPath = filepath.Join(cacheDir, dirName)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("kvs/leveldb: failed to create directory: %w", err)
	}

	opts := &opt.Options{
		Strict:      opt.DefaultStrict,
		Compression: opt.SnappyCompression,
	}
	if cfg.SyncWrites {
		opts.NoSync = false
	}

	db, err := leveldb.OpenFile(dbPath, opts)
	if err != nil {
		// Attempt recovery of a corrupted database before giving up.
		if _, ok := err.(*ldberrors.ErrCorrupted); ok {
			db, err = leveldb.RecoverFile(dbPath, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("kvs/leveldb: failed to open database at %s: %w", dbPath, err)
		}
	}

	interval := cfg.CleanupInterval
	if interval == 0 {
		interval = 5 * time.Minute
	}

	store := &LevelDBStore{
		db:              db,
		cleanupInterval: interval,
		stopCleanup:     make(chan struct{}),
		cleanupDone:     make(chan struct{}),
	}

	go store.cleanupLoop()

	return store, nil
}

// encodeValue prepends the expiration instant to the value.
// Format: [8 bytes: expiration unix nano, 0 = no expiration][value].
func encodeValue(value []byte, ttl time.Duration) []byte {
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}

	encoded := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(encoded[0:8], uint64(expiresAt))
	copy(encoded[8:], value)
	return encoded
}

// decodeValue splits a stored value and reports whether it has expired.
func decodeValue(encoded []byte) (value []byte, expired bool, err error) {
	if len(encoded) < 8 {
		return nil, false, fmt.Errorf("kvs/leveldb: invalid encoded value (too short)")
	}

	expiresAt := int64(binary.BigEndian.Uint64(encoded[0:8]))
	if expiresAt > 0 && time.Now().UnixNano() > expiresAt {
		return nil, true, nil
	}
	return encoded[8:], false, nil
}

func (l *LevelDBStore) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

// Get retrieves a value by key.
func (l *LevelDBStore) Get(ctx context.Context, key string) ([]byte, error) {
	if l.isClosed() {
		return nil, ErrClosed
	}

	encoded, err := l.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kvs/leveldb: get failed: %w", err)
	}

	value, expired, err := decodeValue(encoded)
	if err != nil {
		return nil, err
	}
	if expired {
		// Remove the stale entry out of band.
		go l.Delete(context.Background(), key)
		return nil, ErrNotFound
	}

	return value, nil
}

// Set stores a value with an optional TTL.
func (l *LevelDBStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if l.isClosed() {
		return ErrClosed
	}

	if err := l.db.Put([]byte(key), encodeValue(value, ttl), nil); err != nil {
		return fmt.Errorf("kvs/leveldb: set failed: %w", err)
	}
	return nil
}

// Delete removes a key.
func (l *LevelDBStore) Delete(ctx context.Context, key string) error {
	if l.isClosed() {
		return ErrClosed
	}

	if err := l.db.Delete([]byte(key), nil); err != nil && err != leveldb.ErrNotFound {
		return fmt.Errorf("kvs/leveldb: delete failed: %w", err)
	}
	return nil
}

// Exists reports whether a key exists and has not expired.
func (l *LevelDBStore) Exists(ctx context.Context, key string) (bool, error) {
	if l.isClosed() {
		return false, ErrClosed
	}

	encoded, err := l.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("kvs/leveldb: exists check failed: %w", err)
	}

	_, expired, err := decodeValue(encoded)
	if err != nil {
		return false, err
	}
	return !expired, nil
}

// Close closes the database and stops the cleanup goroutine.
func (l *LevelDBStore) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.closed = true
	l.mu.Unlock()

	close(l.stopCleanup)
	<-l.cleanupDone

	if err := l.db.Close(); err != nil {
		return fmt.Errorf("kvs/leveldb: close failed: %w", err)
	}
	return nil
}

// cleanupLoop periodically sweeps expired keys.
func (l *LevelDBStore) cleanupLoop() {
	defer close(l.cleanupDone)

	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *LevelDBStore) cleanup() {
	if l.isClosed() {
		return
	}

	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	now := time.Now().UnixNano()
	var expiredKeys [][]byte

	for iter.Next() {
		value := iter.Value()
		if len(value) < 8 {
			continue
		}
		expiresAt := int64(binary.BigEndian.Uint64(value[0:8]))
		if expiresAt > 0 && now > expiresAt {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			expiredKeys = append(expiredKeys, key)
		}
	}

	if len(expiredKeys) > 0 {
		batch := new(leveldb.Batch)
		for _, key := range expiredKeys {
			batch.Delete(key)
		}
		_ = l.db.Write(batch, nil) // best effort
	}
}
