package engines

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/tts"
)

// maxGTTSText is the longest text Google Translate accepts in one request.
const maxGTTSText = 5000

// GTTS speaks through gtts-cli (Google Translate TTS). It needs network
// access and reports no word timings.
type GTTS struct {
	cfg     config.GTTSConfig
	lang    string
	binary  string
	limiter *rate.Limiter
	ready   atomic.Bool
}

// NewGTTS is the tts.Factory for gTTS.
func NewGTTS(cfg config.Config) (tts.Capability, error) {
	rpm := cfg.GTTS.RequestsPerMinute
	if rpm < 1 {
		rpm = 1
	}
	return &GTTS{
		cfg:     cfg.GTTS,
		lang:    cfg.VoiceFor("gtts"),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}, nil
}

func (g *GTTS) Name() string         { return "gtts" }
func (g *GTTS) OutputFormat() string { return "mp3" }

func (g *GTTS) Initialize(context.Context) error {
	path, err := lookBinary(g.Name(), g.cfg.Binary)
	if err != nil {
		return err
	}
	g.binary = path
	g.ready.Store(true)
	return nil
}

func (g *GTTS) GenerateAudio(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return tts.ErrEmptyText
	}
	if !g.ready.Load() {
		return tts.ErrNotInitialized
	}
	if len(text) > maxGTTSText {
		return tts.NewError(fmt.Errorf("text too long: %d characters (max %d)", len(text), maxGTTSText), g.Name(), "generate")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	if err := run(ctx, g.cfg.Timeout, nil, g.binary, g.args(text, outputPath)...); err != nil {
		return tts.NewError(err, g.Name(), "generate").WithContext("language", g.lang)
	}
	return checkOutput(g.Name(), outputPath)
}

func (g *GTTS) args(text, outputPath string) []string {
	args := []string{text, "-l", g.lang}
	if g.cfg.Slow {
		args = append(args, "--slow")
	}
	return append(args, "-o", outputPath)
}
