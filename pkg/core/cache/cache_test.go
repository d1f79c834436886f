package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string](Config{MaxItems: 10, TTL: time.Minute})
	defer c.Close()

	c.Set("a", "1")
	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}

	hits, misses, rate := c.Stats()
	if hits != 1 || misses != 1 || rate != 50 {
		t.Errorf("Stats() = %d, %d, %v", hits, misses, rate)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New[int](Config{MaxItems: 10, TTL: 20 * time.Millisecond, CleanupInterval: time.Hour})
	defer c.Close()

	c.Set("short", 1)
	if v, ok := c.Get("short"); !ok || v != 1 {
		t.Fatalf("fresh entry should hit, got %d, %v", v, ok)
	}
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be dropped on Get, Size() = %d", c.Size())
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	c := New[int](Config{MaxItems: 2, TTL: time.Minute})
	defer c.Close()

	c.Set("first", 1)
	time.Sleep(time.Millisecond)
	c.Set("second", 2)
	time.Sleep(time.Millisecond)
	c.Set("first", 10) // overwrite does not evict
	c.Set("third", 3)

	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
	if _, ok := c.Get("second"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if v, _ := c.Get("first"); v != 10 {
		t.Errorf("Get(first) = %d, want 10", v)
	}
}

func TestCache_CleanupSweep(t *testing.T) {
	c := New[int](Config{MaxItems: 10, TTL: 10 * time.Millisecond, CleanupInterval: 10 * time.Millisecond})
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(100 * time.Millisecond)
	if c.Size() != 0 {
		t.Errorf("Size() = %d after sweep, want 0", c.Size())
	}

	c.Close()
	c.Close() // idempotent
}

func TestHashKey(t *testing.T) {
	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("part boundaries must change the key")
	}
	if HashKey("x") != HashKey("x") {
		t.Error("HashKey must be deterministic")
	}
	if len(HashKey("x")) != 64 {
		t.Errorf("len(HashKey) = %d, want 64", len(HashKey("x")))
	}
}
