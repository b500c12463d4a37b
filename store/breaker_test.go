package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/brewrec/core"
)

type failingStore struct {
	*MemoryStore
	err   error
	calls int
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.MemoryStore.Get(ctx, key)
}

func TestBreakerStore_OpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	inner := &failingStore{MemoryStore: NewMemoryStore(), err: errors.New("connection refused")}
	defer inner.Close()

	cfg := DefaultBreakerConfig("test")
	cfg.FailureThreshold = 3
	cfg.Timeout = time.Hour
	b := NewBreakerStore(inner, cfg)

	for i := 0; i < 3; i++ {
		if _, err := b.Get(ctx, "k"); err == nil {
			t.Fatal("expected error from failing store")
		}
	}
	if b.State() != "open" {
		t.Fatalf("state = %s, want open", b.State())
	}
	_, err := b.Get(ctx, "k")
	if !core.IsUnavailable(err) {
		t.Errorf("open breaker err = %v, want UNAVAILABLE", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
}

func TestBreakerStore_NotFoundIsSuccess(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	defer inner.Close()

	cfg := DefaultBreakerConfig("test")
	cfg.FailureThreshold = 1
	b := NewBreakerStore(inner, cfg)

	for i := 0; i < 5; i++ {
		if _, err := b.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
			t.Fatalf("err = %v, want not found", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("state = %s, want closed", b.State())
	}
}
