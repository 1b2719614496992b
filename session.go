package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lue-reader/lue/internal/audio"
	"github.com/lue-reader/lue/internal/cache"
	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/content"
	"github.com/lue-reader/lue/internal/pipeline"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/reader"
	"github.com/lue-reader/lue/internal/text"
	"github.com/lue-reader/lue/internal/tts"
	"github.com/lue-reader/lue/internal/tts/engines"
	"github.com/lue-reader/lue/ui"
)

const (
	initTimeout = 30 * time.Second
	// silentFallback is how long a sentence "plays" with no player when its
	// duration cannot be measured.
	silentFallback = time.Second
)

// backend holds what outlives a single reading session: the speech
// capability, the audio cache and the buffer slots. The book is reopened
// with the same backend when it changes on disk.
type backend struct {
	path     string
	cfg      config.Config
	splitter *text.Splitter

	capability tts.Capability
	err        error

	cache    *cache.Manager
	slots    *audio.Slots
	tracker  *audio.Tracker
	prober   audio.Prober
	launcher audio.Launcher
}

func newRegistry() (*tts.Registry, error) {
	r := tts.NewRegistry()
	if err := engines.Register(r); err != nil {
		return nil, fmt.Errorf("unable to register speech engines: %w", err)
	}
	return r, nil
}

// newBackend prepares the speech side for path. A backend that fails to
// start is not an error: the reader runs text-only and shows why.
func newBackend(ctx context.Context, path string, cfg config.Config, textOnly bool) *backend {
	b := &backend{
		path:     path,
		cfg:      cfg,
		splitter: text.NewSplitter(cfg.Splitter.Abbreviations...),
	}
	if textOnly {
		return b
	}

	if err := b.initSpeech(ctx); err != nil {
		log.Error("speech backend unavailable, reading text only", "engine", cfg.Engine, "error", err)
		b.err = err
		b.capability = nil
	}
	return b
}

func (b *backend) initSpeech(ctx context.Context) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	c, err := registry.New(b.cfg.Engine, b.cfg)
	if err != nil {
		return err
	}

	ictx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()
	if err := c.Initialize(ictx); err != nil {
		return tts.NewError(err, c.Name(), "initialize").WithSeverity(tts.SeverityCritical)
	}
	log.Info("speech backend ready", "engine", c.Name(), "voice", b.cfg.VoiceFor(c.Name()))

	if w, ok := c.(tts.WarmUpper); ok {
		go func() {
			if err := w.WarmUp(ctx); err != nil {
				log.Warn("warm up failed", "engine", c.Name(), "error", err)
			}
		}()
	}

	if b.cfg.Cache.Enabled {
		m, err := cache.New(cache.OptionsFromConfig(b.cfg.Cache))
		if err != nil {
			log.Warn("audio cache disabled", "error", err)
		} else {
			b.cache = m
			// Tempo is applied by the player, so cached audio is always 1.0x.
			c = tts.WithCache(c, m, b.cfg.VoiceFor(c.Name()), 1.0)
		}
	}

	slots, err := audio.NewSlots(b.cfg.Audio.BufferDir, b.cfg.Audio.Buffers, b.cfg.Audio.QueueSize)
	if err != nil {
		return err
	}
	audio.KillStrays(ctx, slots.Dir())
	slots.Clear(ctx)

	b.capability = c
	b.slots = slots
	b.tracker = audio.NewTracker()
	b.prober = audio.NewProber(b.cfg.Audio.Probe)
	if b.cfg.Audio.Player == "none" {
		b.launcher = &audio.Silent{Prober: b.prober, Fallback: silentFallback}
	} else {
		b.launcher = audio.FFPlay{Binary: b.cfg.Audio.Player}
	}
	return nil
}

// open extracts the book and starts a controller at start. It is the
// ui.Opener of the session.
func (b *backend) open(start position.Position, speed float64) (ui.Session, error) {
	chapters, err := content.Extract(b.path)
	if err != nil {
		return ui.Session{}, err
	}
	model := position.NewModel(chapters, b.splitter)
	log.Debug("book loaded", "path", b.path, "chapters", model.Chapters(), "sentences", model.Total())

	opts := reader.Options{
		Model:    model,
		Start:    start,
		Speed:    speed,
		Debounce: b.cfg.Audio.Debounce,
		Err:      b.err,
	}
	if b.capability != nil {
		po := pipeline.Options{
			Capability: b.capability,
			Prober:     b.prober,
			Launcher:   b.launcher,
			Slots:      b.slots,
			Tracker:    b.tracker,
			Model:      model,
			Splitter:   b.splitter,
			Speed:      speed,
			KillStrays: func(ctx context.Context) { audio.KillStrays(ctx, b.slots.Dir()) },
		}
		po.ApplyConfig(b.cfg.Audio)
		p, err := pipeline.New(po)
		if err != nil {
			log.Error("unable to create audio pipeline", "error", err)
			opts.Err = err
		} else {
			opts.Pipeline = p
		}
	}

	return ui.Session{Controller: reader.New(opts), Model: model}, nil
}

// cacheSize reports the bytes held by the audio cache.
func (b *backend) cacheSize() int64 {
	if b.cache == nil {
		return 0
	}
	s := b.cache.Stats()
	return s.Memory.Size + s.Disk.Size
}

func (b *backend) close() {
	if b.slots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		b.tracker.StopAll(ctx)
		b.slots.Clear(ctx)
		cancel()
	}
	if b.cache != nil {
		if err := b.cache.Close(); err != nil {
			log.Warn("unable to close audio cache", "error", err)
		}
	}
}
