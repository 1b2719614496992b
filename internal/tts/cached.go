package tts

import (
	"bytes"
	"context"
	"encoding/gob"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lue-reader/lue/internal/cache"
	"github.com/lue-reader/lue/internal/timing"
)

// cached serves GenerateAudio from a cache.Manager and keeps the engine's
// word timings next to the audio.
type cached struct {
	inner Capability
	store *cache.Manager
	voice string
	speed float64

	mu   sync.Mutex
	hits map[string]bool // outputPath -> last write came from the cache
}

// WithCache wraps c so that repeated sentences are read from m instead of
// being synthesized again. voice and speed are part of the key; the backend
// name is added automatically.
func WithCache(c Capability, m *cache.Manager, voice string, speed float64) Capability {
	if m == nil {
		return c
	}
	return &cached{
		inner: c,
		store: m,
		voice: voice,
		speed: speed,
		hits:  make(map[string]bool),
	}
}

func (c *cached) Name() string         { return c.inner.Name() }
func (c *cached) OutputFormat() string { return c.inner.OutputFormat() }

func (c *cached) Initialize(ctx context.Context) error {
	return c.inner.Initialize(ctx)
}

func (c *cached) GenerateAudio(ctx context.Context, text, outputPath string) error {
	key := c.key(text)
	if data, ok := c.store.Get(key); ok {
		if err := os.WriteFile(outputPath, data, 0o644); err == nil {
			c.markHit(outputPath, true)
			return nil
		}
	}
	c.markHit(outputPath, false)

	if err := c.inner.GenerateAudio(ctx, text, outputPath); err != nil {
		return err
	}

	data, err := os.ReadFile(outputPath)
	if err != nil || len(data) == 0 {
		return nil
	}
	if tp, ok := c.inner.(TimingProvider); ok {
		if raw, err := tp.RawTiming(ctx, text, outputPath); err == nil {
			c.putTimings(key, raw)
		}
	}
	if err := c.store.Put(key, data); err != nil {
		log.Debug("unable to cache audio", "backend", c.Name(), "err", err)
	}
	return nil
}

// RawTiming returns the timings stored with the cached audio. Audio served
// from the cache without stored timings has none, so the caller estimates.
func (c *cached) RawTiming(ctx context.Context, text, outputPath string) ([]timing.WordTiming, error) {
	if raw, ok := c.getTimings(c.key(text)); ok {
		return raw, nil
	}
	if c.wasHit(outputPath) {
		return nil, nil
	}
	if tp, ok := c.inner.(TimingProvider); ok {
		return tp.RawTiming(ctx, text, outputPath)
	}
	return nil, nil
}

func (c *cached) OverlapSeconds() (float64, bool) {
	if op, ok := c.inner.(OverlapProvider); ok {
		return op.OverlapSeconds()
	}
	return 0, false
}

func (c *cached) WarmUp(ctx context.Context) error {
	if w, ok := c.inner.(WarmUpper); ok {
		return w.WarmUp(ctx)
	}
	return nil
}

// Unwrap returns the wrapped backend.
func (c *cached) Unwrap() Capability {
	return c.inner
}

func (c *cached) key(text string) string {
	return cache.GenerateCacheKey(text, c.inner.Name()+"/"+c.voice, c.speed)
}

func (c *cached) putTimings(key string, raw []timing.WordTiming) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(raw); err != nil {
		return
	}
	_ = c.store.Put(key+".timing", buf.Bytes())
}

func (c *cached) getTimings(key string) ([]timing.WordTiming, bool) {
	data, ok := c.store.Get(key + ".timing")
	if !ok {
		return nil, false
	}
	var raw []timing.WordTiming
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, false
	}
	return raw, true
}

func (c *cached) markHit(path string, hit bool) {
	c.mu.Lock()
	c.hits[path] = hit
	c.mu.Unlock()
}

func (c *cached) wasHit(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[path]
}
