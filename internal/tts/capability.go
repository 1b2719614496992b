// Package tts defines what the reader needs from a speech backend and the
// registry that maps backend names to constructors.
package tts

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lue-reader/lue/internal/timing"
)

// Capability is a speech backend. Initialize must succeed before
// GenerateAudio is called; a non-nil error means the backend is not usable.
type Capability interface {
	Name() string
	// OutputFormat is the file extension GenerateAudio writes, without the
	// dot.
	OutputFormat() string
	Initialize(ctx context.Context) error
	GenerateAudio(ctx context.Context, text, outputPath string) error
}

// TimingProvider is implemented by backends that report word boundaries for
// the audio they last wrote to outputPath.
type TimingProvider interface {
	RawTiming(ctx context.Context, text, outputPath string) ([]timing.WordTiming, error)
}

// OverlapProvider overrides how many seconds consecutive sentences may
// overlap at 1.0x.
type OverlapProvider interface {
	OverlapSeconds() (float64, bool)
}

// WarmUpper is implemented by backends that benefit from loading their
// model before the first sentence.
type WarmUpper interface {
	WarmUp(ctx context.Context) error
}

// ReconcileWithFallback returns the timing for audio that c has written to
// outputPath. Missing or failing engine timings degrade to an estimate
// spread over duration; this never fails.
func ReconcileWithFallback(ctx context.Context, c Capability, text, outputPath string, duration float64) timing.Bundle {
	var raw []timing.WordTiming
	if tp, ok := c.(TimingProvider); ok {
		r, err := tp.RawTiming(ctx, text, outputPath)
		if err != nil {
			log.Warn("word timing unavailable, estimating", "backend", c.Name(), "err", err)
		} else {
			raw = r
		}
	}
	return timing.Reconcile(text, raw, duration)
}

// OverlapFor returns the backend's overlap override, or base.
func OverlapFor(c Capability, base float64) float64 {
	if op, ok := c.(OverlapProvider); ok {
		if v, ok := op.OverlapSeconds(); ok && v >= 0 {
			return v
		}
	}
	return base
}
