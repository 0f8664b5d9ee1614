package kvstore_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/men16922/brandy-serverless-sub000/pkg/kvstore"
)

func memoryStore(t *testing.T) kvstore.System {
	t.Helper()

	cfg := &kvstore.Config{Kind: kvstore.KindMemory}
	store, err := kvstore.New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestMemoryPutGet(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rec, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(rec.Value) != "v1" {
		t.Errorf("Value = %q, want %q", rec.Value, "v1")
	}
	if rec.Version != 1 {
		t.Errorf("Version = %d, want 1", rec.Version)
	}

	if err := store.Put(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	rec, err = store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Version != 2 {
		t.Errorf("Version after overwrite = %d, want 2", rec.Version)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	store := memoryStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryEmptyKey(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, ""); !errors.Is(err, kvstore.ErrEmptyKey) {
		t.Errorf("Get(\"\") error = %v, want ErrEmptyKey", err)
	}
	if err := store.Put(ctx, "", nil, 0); !errors.Is(err, kvstore.ErrEmptyKey) {
		t.Errorf("Put(\"\") error = %v, want ErrEmptyKey", err)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	if !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestMemoryPutVersioned(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	version, err := store.PutVersioned(ctx, "k", []byte("v1"), 0, 0)
	if err != nil {
		t.Fatalf("PutVersioned(expect 0) error = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	// stale expect loses
	if _, err := store.PutVersioned(ctx, "k", []byte("v2"), 0, 0); !errors.Is(err, kvstore.ErrVersionConflict) {
		t.Errorf("PutVersioned(stale expect) error = %v, want ErrVersionConflict", err)
	}

	version, err = store.PutVersioned(ctx, "k", []byte("v2"), 0, version)
	if err != nil {
		t.Fatalf("PutVersioned(expect 1) error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestMemoryPutVersionedMissing(t *testing.T) {
	store := memoryStore(t)

	_, err := store.PutVersioned(context.Background(), "missing", []byte("v"), 0, 5)
	if !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("PutVersioned(missing key) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// deleting a missing key is not an error
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestNewUnknownKind(t *testing.T) {
	cfg := &kvstore.Config{Kind: "etcd"}
	if _, err := kvstore.New(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("New() with unknown kind should fail")
	}
}
