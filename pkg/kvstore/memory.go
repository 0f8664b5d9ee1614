package kvstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/men16922/brandy-serverless-sub000/pkg/lifecycle"
)

type memoryEntry struct {
	value     []byte
	version   int64
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	logger  *slog.Logger
}

func newMemoryStore(logger *slog.Logger) System {
	return &memoryStore{
		entries: make(map[string]*memoryEntry),
		logger:  logger.With("system", "kvstore", "kind", "memory"),
	}
}

func (s *memoryStore) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting kvstore")
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) (*Record, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expired(time.Now()) {
		delete(s.entries, key)
		return nil, ErrNotFound
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)

	return &Record{Version: entry.version, Value: value}, nil
}

func (s *memoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := int64(1)
	if entry, ok := s.entries[key]; ok && !entry.expired(time.Now()) {
		version = entry.version + 1
	}

	s.entries[key] = newEntry(value, version, ttl)
	return nil
}

func (s *memoryStore) PutVersioned(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
	expect int64,
) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if ok && entry.expired(time.Now()) {
		delete(s.entries, key)
		ok = false
	}

	switch {
	case !ok && expect != 0:
		return 0, ErrNotFound
	case ok && entry.version != expect:
		return 0, ErrVersionConflict
	}

	next := expect + 1
	s.entries[key] = newEntry(value, next, ttl)
	return next, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func newEntry(value []byte, version int64, ttl time.Duration) *memoryEntry {
	stored := make([]byte, len(value))
	copy(stored, value)

	entry := &memoryEntry{value: stored, version: version}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	return entry
}
