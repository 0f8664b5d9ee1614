// Package kvstore provides a key-value record store with TTL expiry and
// optimistic concurrency, backed by Redis or an in-process map. The
// implementation is selected once at startup through configuration.
package kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/men16922/brandy-serverless-sub000/pkg/lifecycle"
)

// Record is a stored value with its concurrency version.
type Record struct {
	Version int64
	Value   []byte
}

// System manages versioned key-value records with TTL expiry.
type System interface {
	// Start registers a startup hook that verifies store connectivity.
	Start(lc *lifecycle.Coordinator) error
	// Get returns the record at key. Returns ErrNotFound for missing or
	// expired keys.
	Get(ctx context.Context, key string) (*Record, error)
	// Put writes value unconditionally, bumping the record version and
	// resetting the TTL. A ttl of zero means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// PutVersioned writes value only if the stored version equals expect,
	// returning the new version. Returns ErrVersionConflict when another
	// writer got there first, and ErrNotFound when the key is missing.
	// An expect of zero requires the key to not exist yet.
	PutVersioned(ctx context.Context, key string, value []byte, ttl time.Duration, expect int64) (int64, error)
	// Delete removes the record at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// New creates a store System for the configured kind.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Kind {
	case KindRedis:
		return newRedisStore(cfg, logger), nil
	case KindMemory:
		return newMemoryStore(logger), nil
	default:
		return nil, fmt.Errorf("unknown kvstore kind: %s", cfg.Kind)
	}
}

// envelope is the serialized form of a Record.
type envelope struct {
	Version int64  `json:"version"`
	Value   []byte `json:"value"`
}
