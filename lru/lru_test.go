package lru

import "testing"

func TestCacheEvictsOldest(t *testing.T) {
	c := New[int, string](2)
	c.Add(1, "a")
	c.Add(2, "b")
	c.Add(3, "c") // evicts 1
	if _, ok := c.Get(1); ok {
		t.Fatal("expected 1 to be evicted")
	}
	if v, ok := c.Get(2); !ok || v != "b" {
		t.Fatal("expected 2 to remain")
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c := New[int, string](2)
	c.Add(1, "a")
	c.Add(2, "b")
	c.Get(1) // 1 now most recently used
	c.Add(3, "c")
	if _, ok := c.Get(2); ok {
		t.Fatal("expected 2 to be evicted, not 1")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatal("expected 1 to survive")
	}
}
