package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/lue-reader/lue/internal/config"
)

func newTestManager(t *testing.T, memory, disk int64) *Manager {
	t.Helper()
	m, err := New(Options{
		MemoryCapacity:   memory,
		DiskCapacity:     disk,
		Dir:              t.TempDir(),
		CompressionLevel: 3,
	})
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerBasicOperations(t *testing.T) {
	m := newTestManager(t, 1024, 10240)

	if err := m.Put("key", []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := m.Get("key")
	if !ok || string(got) != "value" {
		t.Errorf("Expected value, got %q (found %v)", got, ok)
	}

	m.Delete("key")
	if _, ok := m.Get("key"); ok {
		t.Error("Expected key to be deleted")
	}
}

func TestManagerPromotesDiskHits(t *testing.T) {
	m := newTestManager(t, 100, 10240)

	first := bytes.Repeat([]byte("a"), 60)
	m.Put("first", first)
	// pushes "first" out of memory
	m.Put("second", bytes.Repeat([]byte("b"), 60))

	if m.memory.Contains("first") {
		t.Fatal("Expected first to be evicted from memory")
	}
	got, ok := m.Get("first")
	if !ok || !bytes.Equal(got, first) {
		t.Fatalf("Expected first from disk, got %d bytes (found %v)", len(got), ok)
	}
	if !m.memory.Contains("first") {
		t.Error("Expected disk hit to be promoted to memory")
	}

	s := m.Stats()
	if s.DiskHits != 1 {
		t.Errorf("Expected 1 disk hit, got %d", s.DiskHits)
	}
}

func TestManagerLargeValuesAreCompressed(t *testing.T) {
	m := newTestManager(t, 1<<20, 1<<20)

	value := bytes.Repeat([]byte("silence "), 1000)
	if err := m.Put("wav", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if size := m.disk.Size(); size >= int64(len(value)) {
		t.Errorf("Expected compressed size below %d, got %d", len(value), size)
	}
	m.memory.Clear()
	got, ok := m.Get("wav")
	if !ok || !bytes.Equal(got, value) {
		t.Error("Expected decompressed value to round trip")
	}
}

func TestManagerPersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	opts := Options{MemoryCapacity: 1024, DiskCapacity: 1 << 20, Dir: dir, CompressionLevel: 3}

	m, err := New(opts)
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}
	m.Put("key", []byte("value"))
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = New(opts)
	if err != nil {
		t.Fatalf("Failed to reopen cache manager: %v", err)
	}
	defer m.Close()
	if got, ok := m.Get("key"); !ok || string(got) != "value" {
		t.Errorf("Expected value after restart, got %q (found %v)", got, ok)
	}
}

func TestManagerClear(t *testing.T) {
	m := newTestManager(t, 1024, 10240)
	for _, k := range []string{"a", "b", "c"} {
		m.Put(k, []byte(k))
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if m.Contains(k) {
			t.Errorf("Expected %s to be cleared", k)
		}
	}
}

func TestManagerCleanup(t *testing.T) {
	m, err := New(Options{
		MemoryCapacity:   1024,
		DiskCapacity:     10240,
		Dir:              t.TempDir(),
		CompressionLevel: 3,
		TTL:              10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}
	defer m.Close()

	m.Put("old", []byte("x"))
	time.Sleep(30 * time.Millisecond)

	if n := m.Cleanup(); n != 2 {
		t.Errorf("Expected the entry removed from both levels, got %d removals", n)
	}
	if m.Contains("old") {
		t.Error("Expected expired entry to be gone")
	}
	if m.Stats().CleanupRuns != 1 {
		t.Errorf("Expected 1 cleanup run, got %d", m.Stats().CleanupRuns)
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("Expected error without a directory")
	}
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("Hello world.", "edge/en-US-JennyNeural", 1.0)
	b := GenerateCacheKey("Hello world.", "edge/en-US-JennyNeural", 1.0)
	c := GenerateCacheKey("Hello world.", "edge/en-US-JennyNeural", 1.5)
	d := GenerateCacheKey("Hello world.", "gtts/en", 1.0)

	if a != b {
		t.Error("Expected identical inputs to give identical keys")
	}
	if a == c || a == d {
		t.Error("Expected speed and voice to change the key")
	}
	if len(a) != 32 {
		t.Errorf("Expected 32 hex characters, got %d", len(a))
	}
}

func TestOptionsFromConfig(t *testing.T) {
	c := config.Default().Cache
	c.Dir = "/tmp/audio"
	opts := OptionsFromConfig(c)

	if opts.MemoryCapacity != 64<<20 {
		t.Errorf("Expected 64 MiB, got %d", opts.MemoryCapacity)
	}
	if opts.TTL != 7*24*time.Hour {
		t.Errorf("Expected 7 day TTL, got %v", opts.TTL)
	}
	if opts.Dir != "/tmp/audio" {
		t.Errorf("Expected dir to be kept, got %s", opts.Dir)
	}
}
