package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "index.gob"
	// values smaller than this are stored uncompressed
	compressThreshold = 1024
)

// Disk is the L2 level. Values live in one file each under dir and an
// index of metadata is persisted on Close.
type Disk struct {
	mu       sync.Mutex
	dir      string
	capacity int64
	size     int64
	index    map[string]*diskEntry
	stats    Stats

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

type diskEntry struct {
	Key        string
	File       string
	Size       int64 // bytes on disk
	RawSize    int64
	Compressed bool
	Created    time.Time
	LastAccess time.Time
	Hits       int64
}

// NewDisk opens or creates a disk cache in dir. A missing or unreadable
// index starts the cache empty.
func NewDisk(dir string, capacity int64, level int) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
	}

	d := &Disk{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
		encoder:  enc,
		decoder:  dec,
	}
	if err := d.loadIndex(); err != nil {
		log.Warn("ignoring unreadable cache index", "dir", dir, "err", err)
		d.index = make(map[string]*diskEntry)
	}
	for _, e := range d.index {
		d.size += e.Size
	}
	return d, nil
}

// Get reads and decompresses the value for key. Entries whose file is gone
// or fails to decode are dropped.
func (d *Disk) Get(key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.index[key]
	if !ok {
		d.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(e.File)
	if err == nil && e.Compressed {
		data, err = d.decoder.DecodeAll(data, nil)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
	}
	if err != nil {
		log.Debug("dropping cache entry", "key", key, "err", err)
		d.drop(key)
		d.stats.Misses++
		return nil, false
	}

	e.LastAccess = time.Now()
	e.Hits++
	d.stats.Hits++
	return data, true
}

// Put compresses value when that makes it smaller and writes it
// atomically, evicting least recently accessed entries to stay within
// capacity.
func (d *Disk) Put(key string, value []byte) error {
	data, compressed := value, false
	if len(value) > compressThreshold {
		if packed := d.encoder.EncodeAll(value, nil); len(packed) < len(value) {
			data, compressed = packed, true
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := int64(len(data))
	if n > d.capacity {
		return ErrItemTooLarge
	}
	if _, ok := d.index[key]; ok {
		d.drop(key)
	}
	for d.size+n > d.capacity && len(d.index) > 0 {
		d.evictOldest()
	}

	path := d.pathFor(key)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("unable to write cache file: %w", err)
	}

	now := time.Now()
	d.index[key] = &diskEntry{
		Key:        key,
		File:       path,
		Size:       n,
		RawSize:    int64(len(value)),
		Compressed: compressed,
		Created:    now,
		LastAccess: now,
	}
	d.size += n
	return nil
}

func (d *Disk) Contains(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.index[key]
	return ok
}

func (d *Disk) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drop(key)
}

// Clear removes every entry and persists the empty index.
func (d *Disk) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.index {
		d.drop(key)
	}
	return d.saveIndex()
}

// RemoveOlderThan drops entries created before cutoff.
func (d *Disk) RemoveOlderThan(cutoff time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, e := range d.index {
		if e.Created.Before(cutoff) {
			d.drop(key)
			removed++
		}
	}
	return removed
}

// Oldest returns metadata for up to n least recently accessed entries.
func (d *Disk) Oldest(n int) []Metadata {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.byAccess()
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]Metadata, 0, len(entries))
	for _, e := range entries {
		out = append(out, Metadata{
			Key:        e.Key,
			Size:       e.RawSize,
			Created:    e.Created,
			LastAccess: e.LastAccess,
			Hits:       e.Hits,
			Level:      LevelDisk,
		})
	}
	return out
}

func (d *Disk) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

func (d *Disk) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.Size = d.size
	s.Items = int64(len(d.index))
	return s
}

// Close persists the index.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.decoder.Close()
	return d.saveIndex()
}

func (d *Disk) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:16])+".bin")
}

func (d *Disk) byAccess() []*diskEntry {
	entries := make([]*diskEntry, 0, len(d.index))
	for _, e := range d.index {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.Before(entries[j].LastAccess)
	})
	return entries
}

// The helpers below must be called with d.mu held.

func (d *Disk) drop(key string) {
	e, ok := d.index[key]
	if !ok {
		return
	}
	if err := os.Remove(e.File); err != nil && !os.IsNotExist(err) {
		log.Debug("unable to remove cache file", "file", e.File, "err", err)
	}
	delete(d.index, key)
	d.size -= e.Size
}

func (d *Disk) evictOldest() {
	entries := d.byAccess()
	if len(entries) == 0 {
		return
	}
	d.drop(entries[0].Key)
	d.stats.Evictions++
}

func (d *Disk) loadIndex() error {
	f, err := os.Open(filepath.Join(d.dir, indexFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return gob.NewDecoder(f).Decode(&d.index)
}

func (d *Disk) saveIndex() error {
	f, err := os.CreateTemp(d.dir, indexFile+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := gob.NewEncoder(f).Encode(d.index); err != nil {
		f.Close() //nolint:errcheck
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(d.dir, indexFile))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
