package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager looks values up in memory first, then on disk, promoting disk
// hits into memory.
type Manager struct {
	memory *Memory
	disk   *Disk
	opts   Options
	logger *log.Logger

	mu    sync.Mutex
	stats struct {
		memoryHits  int64
		diskHits    int64
		misses      int64
		cleanupRuns int64
		lastCleanup time.Time
	}

	stop chan struct{}
	wg   sync.WaitGroup
}

// Summary aggregates the counters of both levels.
type Summary struct {
	Memory      Stats
	Disk        Stats
	MemoryHits  int64
	DiskHits    int64
	Misses      int64
	CleanupRuns int64
	LastCleanup time.Time
}

// HitRate returns the combined hit rate of both levels.
func (s Summary) HitRate() float64 {
	total := s.MemoryHits + s.DiskHits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.MemoryHits+s.DiskHits) / float64(total)
}

// New creates a Manager. A positive CleanupInterval starts a goroutine that
// expires old entries until Close.
func New(opts Options) (*Manager, error) {
	if opts.Dir == "" {
		return nil, errors.New("cache directory is not set")
	}
	disk, err := NewDisk(opts.Dir, opts.DiskCapacity, opts.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("unable to open disk cache: %w", err)
	}

	m := &Manager{
		memory: NewMemory(opts.MemoryCapacity),
		disk:   disk,
		opts:   opts,
		logger: log.WithPrefix("cache"),
		stop:   make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	return m, nil
}

// Get returns the cached value for key.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		m.count(func() { m.stats.memoryHits++ })
		return data, true
	}
	if data, ok := m.disk.Get(key); ok {
		m.count(func() { m.stats.diskHits++ })
		_ = m.memory.Put(key, data)
		return data, true
	}
	m.count(func() { m.stats.misses++ })
	return nil, false
}

// Put stores value in both levels. A value too large for memory is still
// written to disk.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}
	if err := m.disk.Put(key, value); err != nil {
		if errors.Is(err, ErrItemTooLarge) {
			m.logger.Debug("item too large for disk cache", "key", key, "size", len(value))
			return nil
		}
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

func (m *Manager) Contains(key string) bool {
	return m.memory.Contains(key) || m.disk.Contains(key)
}

func (m *Manager) Delete(key string) {
	m.memory.Delete(key)
	m.disk.Delete(key)
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	m.memory.Clear()
	if err := m.disk.Clear(); err != nil {
		return fmt.Errorf("unable to clear disk cache: %w", err)
	}
	return nil
}

// Cleanup expires entries older than the configured TTL and returns how
// many were removed.
func (m *Manager) Cleanup() int {
	m.count(func() {
		m.stats.cleanupRuns++
		m.stats.lastCleanup = time.Now()
	})
	if m.opts.TTL <= 0 {
		return 0
	}
	removed := m.disk.RemoveOlderThan(time.Now().Add(-m.opts.TTL))
	removed += m.memory.Prune(m.opts.TTL)
	if removed > 0 {
		m.logger.Debug("expired cache entries", "count", removed)
	}
	return removed
}

func (m *Manager) Stats() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Summary{
		Memory:      m.memory.Stats(),
		Disk:        m.disk.Stats(),
		MemoryHits:  m.stats.memoryHits,
		DiskHits:    m.stats.diskHits,
		Misses:      m.stats.misses,
		CleanupRuns: m.stats.cleanupRuns,
		LastCleanup: m.stats.lastCleanup,
	}
}

// Close stops the cleanup goroutine and persists the disk index.
func (m *Manager) Close() error {
	close(m.stop)
	m.wg.Wait()
	if err := m.disk.Close(); err != nil {
		return fmt.Errorf("unable to close disk cache: %w", err)
	}
	return nil
}

func (m *Manager) count(f func()) {
	m.mu.Lock()
	f()
	m.mu.Unlock()
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.stop:
			return
		}
	}
}

// GenerateCacheKey derives a key from the sentence text, the voice (which
// should include the backend name) and the speed.
func GenerateCacheKey(text, voice string, speed float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f", text, voice, speed)))
	return hex.EncodeToString(sum[:16])
}
