package engines

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/text"
	"github.com/lue-reader/lue/internal/timing"
	"github.com/lue-reader/lue/internal/tts"
)

// Mock writes silent WAV files sized to the number of words. It can report
// synthetic word timings and fail a configured number of times, which makes
// it useful for tests and for trying the reader without a speech engine.
type Mock struct {
	cfg       config.MockConfig
	failures  atomic.Int64
	generated atomic.Int64
}

// NewMock is the tts.Factory for the mock backend.
func NewMock(cfg config.Config) (tts.Capability, error) {
	m := &Mock{cfg: cfg.Mock}
	if m.cfg.SampleRate <= 0 {
		m.cfg.SampleRate = 16000
	}
	if m.cfg.WordSeconds <= 0 {
		m.cfg.WordSeconds = timing.DefaultWordSeconds
	}
	m.failures.Store(int64(cfg.Mock.FailCount))
	return m, nil
}

func (m *Mock) Name() string                     { return "mock" }
func (m *Mock) OutputFormat() string             { return "wav" }
func (m *Mock) Initialize(context.Context) error { return nil }

func (m *Mock) GenerateAudio(ctx context.Context, s, outputPath string) error {
	if err := sleepContext(ctx, m.cfg.Delay); err != nil {
		return err
	}
	if m.failures.Add(-1) >= 0 {
		return tts.NewError(tts.ErrGenerationFailed, m.Name(), "generate").WithContext("reason", "configured failure")
	}

	words := len(text.HighlightableWords(s))
	if words == 0 {
		words = 1
	}
	samples := int(float64(words) * m.cfg.WordSeconds * float64(m.cfg.SampleRate))
	if err := writeSilence(outputPath, m.cfg.SampleRate, samples); err != nil {
		return tts.NewError(err, m.Name(), "generate")
	}
	m.generated.Add(1)
	return nil
}

// RawTiming returns one entry per word, each a little shorter than its
// slot so the gaps exercise repair.
func (m *Mock) RawTiming(_ context.Context, s, _ string) ([]timing.WordTiming, error) {
	if !m.cfg.WordTimings {
		return nil, nil
	}
	words := text.HighlightableWords(s)
	out := make([]timing.WordTiming, len(words))
	for i, w := range words {
		start := float64(i) * m.cfg.WordSeconds
		out[i] = timing.WordTiming{Word: w, Start: start, End: start + m.cfg.WordSeconds*0.8}
	}
	return out, nil
}

// Generated returns how many files were written.
func (m *Mock) Generated() int {
	return int(m.generated.Load())
}

func writeSilence(path string, sampleRate, samples int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           make([]int, samples),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("unable to write wav: %w", err)
	}
	return enc.Close()
}
