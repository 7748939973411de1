package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSetStats(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	if _, ok := c.Get("list"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("list", "v1")
	if v, ok := c.Get("list"); !ok || v != "v1" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit 1 miss", s)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("list", "v1")

	clock.advance(2 * time.Minute)
	if _, ok := c.Get("list"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed on read, size %d", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was used recently")
	}
}

func TestLRUCache_DeleteAndClean(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")
	if c.Size() != 1 {
		t.Fatalf("size after delete = %d", c.Size())
	}

	clock.advance(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size after clean = %d", c.Size())
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	c, _ := newTestCache(1, time.Minute)
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	m.Stop()
	m.Stop()

	unstarted := NewManager()
	unstarted.Stop()
}
