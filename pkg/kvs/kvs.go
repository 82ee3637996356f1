// Package kvs provides a small key-value store abstraction with
// Memory, LevelDB, and Redis implementations. The session layer uses
// it as the persistence backend for the credential slot.
package kvs

import (
	"context"
	"errors"
	"time"
)

// Store is a key-value store supporting TTL. All implementations must
// be safe for concurrent use.
type Store interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL. A ttl of 0 means the
	// key never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key exists and has not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources. Operations on a
	// closed store return ErrClosed.
	Close() error
}

// Common errors
var (
	// ErrNotFound is returned when a key is not found or has expired.
	ErrNotFound = errors.New("kvs: key not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("kvs: store is closed")
)

// Config selects and configures a store backend.
type Config struct {
	// Type specifies the store type: "memory", "leveldb", or "redis".
	// Empty defaults to "memory".
	Type string `yaml:"type" json:"type"`

	// Namespace provides logical isolation within the backend:
	// a key prefix for Memory and Redis, a directory suffix for LevelDB.
	Namespace string `yaml:"namespace" json:"namespace"`

	Memory  MemoryConfig  `yaml:"memory" json:"memory"`
	LevelDB LevelDBConfig `yaml:"leveldb" json:"leveldb"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
}

// MemoryConfig configures the in-memory store.
type MemoryConfig struct {
	// CleanupInterval is how often expired keys are swept. Default: 5 minutes.
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// LevelDBConfig configures the LevelDB store.
type LevelDBConfig struct {
	// Path is the directory for the database. Empty uses a
	// namespace-derived directory under the OS cache dir.
	Path string `yaml:"path" json:"path"`

	// SyncWrites enables synchronous writes (slower but safer).
	SyncWrites bool `yaml:"sync_writes" json:"sync_writes"`

	// CleanupInterval is how often expired keys are swept. Default: 5 minutes.
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" json:"addr"`

	// Password is the Redis password (optional).
	Password string `yaml:"password" json:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db" json:"db"`

	// PoolSize caps socket connections (0 = driver default).
	PoolSize int `yaml:"pool_size" json:"pool_size"`
}

// New creates a store for the given config.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryStore(cfg.Namespace, cfg.Memory)
	case "leveldb":
		return NewLevelDBStore(cfg.Namespace, cfg.LevelDB)
	case "redis":
		return NewRedisStore(cfg.Namespace, cfg.Redis)
	default:
		return nil, errors.New("kvs: unsupported store type: " + cfg.Type)
	}
}
