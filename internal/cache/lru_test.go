package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Hour) // 3 items max

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Set("key4", "value4") // Should evict key1

	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	if _, found := cache.Get("key2"); !found {
		t.Error("key2 should still be present")
	}
	if _, found := cache.Get("key3"); !found {
		t.Error("key3 should still be present")
	}
	if _, found := cache.Get("key4"); !found {
		t.Error("key4 should still be present")
	}
	if cache.Size() != 3 {
		t.Errorf("Size() = %d, want 3", cache.Size())
	}
}

func TestLRUCache_RecentlyUsedSurvivesEviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")

	// Touch key1 so key2 becomes the eviction candidate
	cache.Get("key1")
	cache.Set("key4", "value4")

	if _, found := cache.Get("key1"); !found {
		t.Error("key1 was recently used and should survive")
	}
	if _, found := cache.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	cache := NewLRUCache[string](100, 50*time.Millisecond)

	cache.Set("key1", "value1")

	if _, found := cache.Get("key1"); !found {
		t.Error("key1 should be present before TTL expires")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have expired")
	}
}

func TestLRUCache_Delete(t *testing.T) {
	cache := NewLRUCache[int](10, time.Hour)

	cache.Set("key1", 1)
	cache.Delete("key1")
	cache.Delete("missing") // no-op

	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have been deleted")
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0", cache.Size())
	}
}

func TestLRUCache_DeletePrefix(t *testing.T) {
	cache := NewLRUCache[string](10, time.Hour)

	cache.Set("u1:2025-06", "a")
	cache.Set("u1:2025-07", "b")
	cache.Set("u2:2025-06", "c")

	removed := cache.DeletePrefix("u1:")
	if removed != 2 {
		t.Errorf("DeletePrefix() removed = %d, want 2", removed)
	}
	if _, found := cache.Get("u1:2025-06"); found {
		t.Error("u1:2025-06 should have been removed")
	}
	if _, found := cache.Get("u2:2025-06"); !found {
		t.Error("u2:2025-06 should still be present")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	cache := NewLRUCache[string](100, 50*time.Millisecond)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")

	time.Sleep(60 * time.Millisecond)

	removed := cache.CleanExpired()
	if removed != 3 {
		t.Errorf("CleanExpired() = %d, want 3", removed)
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d after cleanup, want 0", cache.Size())
	}
}

func TestManager_Lifecycle(t *testing.T) {
	mgr := NewManager()
	cache := NewLRUCache[string](100, time.Nanosecond)
	mgr.Register(cache)

	for i := 0; i < 10; i++ {
		cache.Set(fmt.Sprintf("key%d", i), "value")
	}

	mgr.StartCleanup(10 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cache.Size() == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if cache.Size() != 0 {
		t.Errorf("Size() = %d after cleanup interval, want 0", cache.Size())
	}

	mgr.Stop()
}
