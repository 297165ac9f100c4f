package cache

import (
	"context"
	"testing"
	"time"

	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func entry(hash string, expiresAt time.Time) *core.CacheEntry {
	return &core.CacheEntry{
		ContentHash: hash,
		Category:    core.CategoryProductive,
		Confidence:  0.8,
		LastSeen:    time.Now(),
		ExpiresAt:   expiresAt,
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	want := entry("hash-1", time.Now().Add(time.Hour))
	if err := c.Set(ctx, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want the stored entry")
	}
	if got.Category != core.CategoryProductive || got.Confidence != 0.8 {
		t.Errorf("Get() = %+v, want the stored classification", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t)

	got, err := c.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for an unknown hash", got)
	}
}

func TestMemoryCacheExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, entry("hash-1", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for an expired entry", got)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, entry("hash-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "hash-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := c.Get(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil after delete", got)
	}
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, entry("live", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, entry("expired", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.entries["expired"]; ok {
		t.Error("expired entry survived cleanup")
	}
	if _, ok := c.entries["live"]; !ok {
		t.Error("live entry was removed by cleanup")
	}
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	first := entry("hash-1", time.Now().Add(time.Hour))
	if err := c.Set(ctx, first); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	second := entry("hash-1", time.Now().Add(2*time.Hour))
	second.Category = core.CategoryUnproductive
	if err := c.Set(ctx, second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Category != core.CategoryUnproductive {
		t.Errorf("category = %s, want the overwritten value", got.Category)
	}
}
