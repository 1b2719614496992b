package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep/mp3"
)

// ErrUnsupportedFormat is returned by DecodeProber for files it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

const probeTimeout = 5 * time.Second

// Prober measures the duration of an audio file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe asks ffprobe for the container duration.
type FFProbe struct {
	Binary string
}

func (p FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}
	return parseDuration(string(out))
}

func parseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected duration %q", s)
	}
	return d, nil
}

// DecodeProber reads the duration in process: WAV through go-audio and MP3
// through beep.
type DecodeProber struct{}

func (DecodeProber) Duration(_ context.Context, path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		defer f.Close() //nolint:errcheck
		d, err := wav.NewDecoder(f).Duration()
		if err != nil {
			return 0, fmt.Errorf("unable to read wav header: %w", err)
		}
		return d.Seconds(), nil
	case ".mp3":
		// the streamer owns f from here on
		s, format, err := mp3.Decode(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return 0, fmt.Errorf("unable to decode mp3: %w", err)
		}
		defer s.Close() //nolint:errcheck
		return format.SampleRate.D(s.Len()).Seconds(), nil
	default:
		f.Close() //nolint:errcheck
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FallbackProber tries Primary and falls back to Secondary when it fails,
// e.g. when ffprobe is not installed.
type FallbackProber struct {
	Primary   Prober
	Secondary Prober
}

func (p FallbackProber) Duration(ctx context.Context, path string) (float64, error) {
	d, err := p.Primary.Duration(ctx, path)
	if err == nil || p.Secondary == nil {
		return d, err
	}
	log.Debug("primary probe failed, decoding instead", "file", filepath.Base(path), "err", err)
	return p.Secondary.Duration(ctx, path)
}

// NewProber returns ffprobe backed by the in-process decoder.
func NewProber(ffprobe string) Prober {
	return FallbackProber{Primary: FFProbe{Binary: ffprobe}, Secondary: DecodeProber{}}
}
