package engines

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/tts"
)

// Piper runs the offline Piper synthesizer, one fresh process per sentence
// with the text attached to stdin before the process starts.
type Piper struct {
	cfg    config.PiperConfig
	model  string
	binary string
	ready  atomic.Bool
}

// NewPiper is the tts.Factory for Piper.
func NewPiper(cfg config.Config) (tts.Capability, error) {
	return &Piper{cfg: cfg.Piper, model: cfg.VoiceFor("piper")}, nil
}

func (p *Piper) Name() string         { return "piper" }
func (p *Piper) OutputFormat() string { return "wav" }

func (p *Piper) Initialize(context.Context) error {
	if p.model == "" {
		return tts.NewError(errors.New("model path is required"), p.Name(), "initialize").
			WithSeverity(tts.SeverityCritical)
	}
	if _, err := os.Stat(p.model); err != nil {
		return tts.NewError(fmt.Errorf("model file not found: %w", err), p.Name(), "initialize").
			WithSeverity(tts.SeverityCritical).
			WithContext("model", p.model)
	}
	path, err := lookBinary(p.Name(), p.cfg.Binary)
	if err != nil {
		return err
	}
	p.binary = path
	p.ready.Store(true)
	return nil
}

func (p *Piper) GenerateAudio(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return tts.ErrEmptyText
	}
	if !p.ready.Load() {
		return tts.ErrNotInitialized
	}
	if err := run(ctx, p.cfg.Timeout, strings.NewReader(text), p.binary, p.args(outputPath)...); err != nil {
		return tts.NewError(err, p.Name(), "generate").WithContext("model", filepath.Base(p.model))
	}
	return checkOutput(p.Name(), outputPath)
}

// OverlapSeconds returns the configured Piper overlap, which replaces the
// pipeline default.
func (p *Piper) OverlapSeconds() (float64, bool) {
	return p.cfg.Overlap, true
}

// WarmUp loads the model by synthesizing a short phrase.
func (p *Piper) WarmUp(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "lue-piper-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir) //nolint:errcheck
	return p.GenerateAudio(ctx, "Ready.", filepath.Join(dir, "warmup.wav"))
}

func (p *Piper) args(outputPath string) []string {
	args := []string{"--model", p.model, "--output_file", outputPath}
	if p.cfg.Speaker > 0 {
		args = append(args, "--speaker", strconv.Itoa(p.cfg.Speaker))
	}
	if p.cfg.LengthScale > 0 && p.cfg.LengthScale != 1.0 {
		args = append(args, "--length_scale", strconv.FormatFloat(p.cfg.LengthScale, 'f', 2, 64))
	}
	return args
}
