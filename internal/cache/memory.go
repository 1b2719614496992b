package cache

import (
	"container/list"
	"sync"
	"time"
)

// Memory is the L1 level: a byte-bounded LRU.
type Memory struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	stats    Stats
}

type memoryEntry struct {
	key     string
	value   []byte
	created time.Time
	hits    int64
}

// NewMemory creates an LRU holding at most capacity bytes.
func NewMemory(capacity int64) *Memory {
	return &Memory{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the value for key and marks it as recently used.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, false
	}
	m.order.MoveToFront(elem)
	e := elem.Value.(*memoryEntry)
	e.hits++
	m.stats.Hits++
	return e.value, true
}

// Put stores value under key, evicting least recently used entries as
// needed.
func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(value))
	if n > m.capacity {
		return ErrItemTooLarge
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	for m.size+n > m.capacity && m.order.Len() > 0 {
		m.remove(m.order.Back())
		m.stats.Evictions++
	}

	m.items[key] = m.order.PushFront(&memoryEntry{key: key, value: value, created: time.Now()})
	m.size += n
	return nil
}

// Contains reports whether key is cached without touching its recency.
func (m *Memory) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*list.Element)
	m.order.Init()
	m.size = 0
}

// Prune drops entries created more than maxAge ago and returns how many
// were removed.
func (m *Memory) Prune(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).created.Before(cutoff) {
			m.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// Oldest returns metadata for up to n least recently used entries, oldest
// first.
func (m *Memory) Oldest(n int) []Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Metadata, 0, n)
	for elem := m.order.Back(); elem != nil && len(out) < n; elem = elem.Prev() {
		e := elem.Value.(*memoryEntry)
		out = append(out, Metadata{
			Key:     e.key,
			Size:    int64(len(e.value)),
			Created: e.created,
			Hits:    e.hits,
			Level:   LevelMemory,
		})
	}
	return out
}

func (m *Memory) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Size = m.size
	s.Items = int64(len(m.items))
	return s
}

// remove must be called with m.mu held.
func (m *Memory) remove(elem *list.Element) {
	e := m.order.Remove(elem).(*memoryEntry)
	delete(m.items, e.key)
	m.size -= int64(len(e.value))
}
