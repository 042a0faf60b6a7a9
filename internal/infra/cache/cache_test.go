package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"
)

var _ port.Cache[string] = (*cache.InMemory[string])(nil)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Stop()

	c.Set("vendors", "v1")
	val, ok := c.Get("vendors")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "v1" {
		t.Errorf("expected 'v1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Stop()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Stop()

	c.Set("dealers", "d1")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("dealers"); ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_Purge(t *testing.T) {
	c := cache.New[int](5 * time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d entries", c.Len())
	}
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c := cache.New[string](0)
	defer c.Stop()

	c.Set("key1", "value1")
	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected zero TTL cache to store nothing")
	}
}

func TestCache_StopIdempotent(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Stop()
	c.Stop()
}
