package cache_test

import (
	"testing"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("approvals:emp-1:2025-01:", 1)
	c.Set("approvals:emp-1:2025-02:", 2)
	c.Set("approvals:emp-2::", 3)
	c.Set("hierarchy:emp-1", 4)

	c.DeletePrefix("approvals:emp-1:")

	if _, ok := c.Get("approvals:emp-1:2025-01:"); ok {
		t.Error("expected prefixed key to be deleted")
	}
	if _, ok := c.Get("approvals:emp-1:2025-02:"); ok {
		t.Error("expected prefixed key to be deleted")
	}
	if _, ok := c.Get("approvals:emp-2::"); !ok {
		t.Error("expected other company's key to survive")
	}
	if _, ok := c.Get("hierarchy:emp-1"); !ok {
		t.Error("expected unrelated key to survive")
	}
}
