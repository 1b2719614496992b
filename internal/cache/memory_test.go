package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryBasicOperations(t *testing.T) {
	m := NewMemory(1024)

	if err := m.Put("key", []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := m.Get("key")
	if !ok || string(got) != "value" {
		t.Errorf("Expected value, got %q (found %v)", got, ok)
	}
	if m.Size() != 5 {
		t.Errorf("Expected size 5, got %d", m.Size())
	}

	m.Delete("key")
	if m.Contains("key") {
		t.Error("Expected key to be deleted")
	}
	if m.Size() != 0 {
		t.Errorf("Expected size 0 after delete, got %d", m.Size())
	}
}

func TestMemoryLRUEviction(t *testing.T) {
	m := NewMemory(30)

	for i := 0; i < 3; i++ {
		if err := m.Put(fmt.Sprintf("k%d", i), make([]byte, 10)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	// touch k0 so k1 becomes the oldest
	m.Get("k0")
	if err := m.Put("k3", make([]byte, 10)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if m.Contains("k1") {
		t.Error("Expected k1 to be evicted")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if !m.Contains(k) {
			t.Errorf("Expected %s to be cached", k)
		}
	}
	if ev := m.Stats().Evictions; ev != 1 {
		t.Errorf("Expected 1 eviction, got %d", ev)
	}
}

func TestMemoryItemTooLarge(t *testing.T) {
	m := NewMemory(10)
	if err := m.Put("big", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Expected ErrItemTooLarge, got %v", err)
	}
}

func TestMemoryReplace(t *testing.T) {
	m := NewMemory(100)
	m.Put("k", make([]byte, 40))
	m.Put("k", make([]byte, 10))

	if m.Size() != 10 {
		t.Errorf("Expected size 10 after replace, got %d", m.Size())
	}
	if n := m.Stats().Items; n != 1 {
		t.Errorf("Expected 1 item, got %d", n)
	}
}

func TestMemoryStats(t *testing.T) {
	m := NewMemory(100)
	m.Put("k", []byte("v"))
	m.Get("k")
	m.Get("k")
	m.Get("missing")

	s := m.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Expected 2 hits and 1 miss, got %d and %d", s.Hits, s.Misses)
	}
	if rate := s.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("Expected hit rate about 0.67, got %f", rate)
	}
}

func TestMemoryPrune(t *testing.T) {
	m := NewMemory(100)
	m.Put("old", []byte("a"))
	time.Sleep(20 * time.Millisecond)
	m.Put("new", []byte("b"))

	if n := m.Prune(10 * time.Millisecond); n != 1 {
		t.Errorf("Expected 1 pruned entry, got %d", n)
	}
	if m.Contains("old") || !m.Contains("new") {
		t.Error("Expected only the old entry to be pruned")
	}
}

func TestMemoryOldest(t *testing.T) {
	m := NewMemory(100)
	for _, k := range []string{"a", "b", "c"} {
		m.Put(k, []byte(k))
	}
	m.Get("a")

	got := m.Oldest(2)
	if len(got) != 2 || got[0].Key != "b" || got[1].Key != "c" {
		t.Errorf("Expected [b c], got %+v", got)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory(1 << 16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d-%d", g, i%10)
				m.Put(key, []byte(key))
				m.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if m.Size() > 1<<16 {
		t.Errorf("Expected size within capacity, got %d", m.Size())
	}
}
