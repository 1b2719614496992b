package cache

import (
	"errors"
	"time"

	"github.com/lue-reader/lue/internal/config"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the capacity of a level.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCorrupted is returned when a disk entry cannot be decoded.
	ErrCorrupted = errors.New("cache data corrupted")
)

// Level identifies a cache tier.
type Level int

const (
	LevelMemory Level = iota
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds counters for one cache level.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Metadata describes a cached item.
type Metadata struct {
	Key        string
	Size       int64
	Created    time.Time
	LastAccess time.Time
	Hits       int64
	Level      Level
}

// Options configures a Manager.
type Options struct {
	MemoryCapacity   int64
	DiskCapacity     int64
	Dir              string
	CompressionLevel int
	TTL              time.Duration
	CleanupInterval  time.Duration
}

// OptionsFromConfig converts the user facing cache section into Options.
func OptionsFromConfig(c config.CacheConfig) Options {
	return Options{
		MemoryCapacity:   int64(c.MemoryMB) << 20,
		DiskCapacity:     int64(c.DiskMB) << 20,
		Dir:              c.Dir,
		CompressionLevel: c.CompressionLevel,
		TTL:              time.Duration(c.TTLDays) * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}
