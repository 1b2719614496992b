package engines

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/timing"
	"github.com/lue-reader/lue/internal/tts"
)

// Edge speaks through the edge-tts command line tool, which also writes
// word boundary subtitles.
type Edge struct {
	cfg     config.EdgeConfig
	voice   string
	binary  string
	limiter *rate.Limiter
	ready   atomic.Bool
}

// NewEdge is the tts.Factory for edge-tts.
func NewEdge(cfg config.Config) (tts.Capability, error) {
	rpm := cfg.Edge.RequestsPerMinute
	if rpm < 1 {
		rpm = 1
	}
	return &Edge{
		cfg:     cfg.Edge,
		voice:   cfg.VoiceFor("edge"),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 2),
	}, nil
}

func (e *Edge) Name() string         { return "edge" }
func (e *Edge) OutputFormat() string { return "mp3" }

func (e *Edge) Initialize(context.Context) error {
	path, err := lookBinary(e.Name(), e.cfg.Binary)
	if err != nil {
		return err
	}
	e.binary = path
	e.ready.Store(true)
	return nil
}

func (e *Edge) GenerateAudio(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return tts.ErrEmptyText
	}
	if !e.ready.Load() {
		return tts.ErrNotInitialized
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	subtitles := subtitlePath(outputPath)
	removeStale(subtitles)

	if err := run(ctx, e.cfg.Timeout, nil, e.binary, e.args(text, outputPath, subtitles)...); err != nil {
		return tts.NewError(err, e.Name(), "generate").WithContext("voice", e.voice)
	}
	return checkOutput(e.Name(), outputPath)
}

// RawTiming reads the subtitles written next to outputPath.
func (e *Edge) RawTiming(_ context.Context, _, outputPath string) ([]timing.WordTiming, error) {
	if !e.cfg.WordTimings {
		return nil, nil
	}
	f, err := os.Open(subtitlePath(outputPath))
	if err != nil {
		return nil, fmt.Errorf("no subtitles for %s: %w", filepath.Base(outputPath), err)
	}
	defer f.Close() //nolint:errcheck
	return ParseSubtitles(f)
}

// WarmUp synthesizes a short phrase so the first sentence does not pay for
// the connection setup.
func (e *Edge) WarmUp(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "lue-edge-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir) //nolint:errcheck
	if err := e.GenerateAudio(ctx, "Ready.", filepath.Join(dir, "warmup.mp3")); err != nil {
		log.Warn("edge-tts warm up failed, check the network or the voice name", "voice", e.voice, "err", err)
		return err
	}
	return nil
}

func (e *Edge) args(text, outputPath, subtitles string) []string {
	args := []string{"--text", text, "--voice", e.voice}
	if e.cfg.Rate != "" {
		// rates start with a sign, so they must be attached to the flag
		args = append(args, "--rate="+e.cfg.Rate)
	}
	args = append(args, "--write-media", outputPath)
	if e.cfg.WordTimings {
		args = append(args, "--write-subtitles", subtitles)
	}
	return args
}

func subtitlePath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".vtt"
}
