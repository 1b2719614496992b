package engines

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/tts"
)

func TestRegister(t *testing.T) {
	r := tts.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	want := []string{"edge", "gtts", "mock", "piper"}
	got := r.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if err := Register(r); !errors.Is(err, tts.ErrDuplicateBackend) {
		t.Errorf("Expected duplicate registration to fail, got %v", err)
	}
}

func TestInitializeMissingBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Edge.Binary = "lue-no-such-edge-tts"
	cfg.GTTS.Binary = "lue-no-such-gtts-cli"

	for _, factory := range []tts.Factory{NewEdge, NewGTTS} {
		c, err := factory(cfg)
		if err != nil {
			t.Fatalf("Factory failed: %v", err)
		}
		err = c.Initialize(context.Background())
		if !errors.Is(err, tts.ErrBinaryNotFound) {
			t.Errorf("%s: expected ErrBinaryNotFound, got %v", c.Name(), err)
		}
		if tts.IsRecoverable(err) {
			t.Errorf("%s: expected a critical error", c.Name())
		}
	}
}

func TestPiperRequiresModel(t *testing.T) {
	cfg := config.Default()
	c, _ := NewPiper(cfg)
	if err := c.Initialize(context.Background()); err == nil || tts.IsRecoverable(err) {
		t.Errorf("Expected critical error without a model, got %v", err)
	}

	cfg.Piper.Model = filepath.Join(t.TempDir(), "missing.onnx")
	c, _ = NewPiper(cfg)
	if err := c.Initialize(context.Background()); err == nil {
		t.Error("Expected error for a missing model file")
	}
}

func TestGenerateBeforeInitialize(t *testing.T) {
	cfg := config.Default()
	for _, factory := range []tts.Factory{NewEdge, NewGTTS, NewPiper} {
		c, _ := factory(cfg)
		err := c.GenerateAudio(context.Background(), "Hello.", filepath.Join(t.TempDir(), "out"))
		if !errors.Is(err, tts.ErrNotInitialized) {
			t.Errorf("%s: expected ErrNotInitialized, got %v", c.Name(), err)
		}
		if err := c.GenerateAudio(context.Background(), "  ", "out"); !errors.Is(err, tts.ErrEmptyText) {
			t.Errorf("%s: expected ErrEmptyText, got %v", c.Name(), err)
		}
	}
}

func TestEdgeArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Edge.Rate = "+10%"
	c, _ := NewEdge(cfg)
	e := c.(*Edge)

	got := strings.Join(e.args("Hi there.", "/tmp/buffer_0.mp3", "/tmp/buffer_0.vtt"), " ")
	want := "--text Hi there. --voice en-US-JennyNeural --rate=+10% --write-media /tmp/buffer_0.mp3 --write-subtitles /tmp/buffer_0.vtt"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if p := subtitlePath("/tmp/buffer_0.mp3"); p != "/tmp/buffer_0.vtt" {
		t.Errorf("Expected subtitle path /tmp/buffer_0.vtt, got %s", p)
	}
}

func TestEdgeRawTiming(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "buffer_1.mp3")
	vtt := "WEBVTT\n\n00:00:00.100 --> 00:00:00.500\nHello\n\n00:00:00.500 --> 00:00:01.200\nbrave new world\n"
	if err := os.WriteFile(subtitlePath(out), []byte(vtt), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := NewEdge(config.Default())
	raw, err := c.(tts.TimingProvider).RawTiming(context.Background(), "Hello brave new world", out)
	if err != nil {
		t.Fatalf("RawTiming failed: %v", err)
	}
	if len(raw) != 2 || raw[1].Word != "brave new world" {
		t.Errorf("Expected 2 cues, got %+v", raw)
	}

	b := tts.ReconcileWithFallback(context.Background(), c, "Hello brave new world", out, 1.2)
	want := []int{0, 1, 1, 1}
	for i, idx := range b.WordMapping {
		if idx != want[i] {
			t.Errorf("Expected mapping %v, got %v", want, b.WordMapping)
			break
		}
	}
}

func TestGTTSArgs(t *testing.T) {
	cfg := config.Default()
	cfg.GTTS.Slow = true
	cfg.GTTS.Language = "fr"
	c, _ := NewGTTS(cfg)

	got := strings.Join(c.(*GTTS).args("Bonjour.", "out.mp3"), " ")
	if got != "Bonjour. -l fr --slow -o out.mp3" {
		t.Errorf("Unexpected args %q", got)
	}
}

func TestPiperArgsAndOverlap(t *testing.T) {
	cfg := config.Default()
	cfg.Piper.Model = "/models/voice.onnx"
	cfg.Piper.Speaker = 2
	cfg.Piper.LengthScale = 0.8
	c, _ := NewPiper(cfg)

	got := strings.Join(c.(*Piper).args("out.wav"), " ")
	want := "--model /models/voice.onnx --output_file out.wav --speaker 2 --length_scale 0.80"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if o := tts.OverlapFor(c, 0.5); o != 0.6 {
		t.Errorf("Expected piper overlap 0.6, got %v", o)
	}
}

func TestMock(t *testing.T) {
	cfg := config.Default()
	cfg.Mock.FailCount = 1
	c, _ := NewMock(cfg)
	m := c.(*Mock)
	out := filepath.Join(t.TempDir(), "buffer_0.wav")
	ctx := context.Background()

	if err := m.GenerateAudio(ctx, "one two three", out); !errors.Is(err, tts.ErrGenerationFailed) {
		t.Fatalf("Expected configured failure, got %v", err)
	}
	if err := m.GenerateAudio(ctx, "one two three", out); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if m.Generated() != 1 {
		t.Errorf("Expected 1 generated file, got %d", m.Generated())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d, err := wav.NewDecoder(f).Duration()
	if err != nil {
		t.Fatalf("Failed to read wav duration: %v", err)
	}
	if d < 850*time.Millisecond || d > 950*time.Millisecond {
		t.Errorf("Expected about 0.9s of audio, got %v", d)
	}

	raw, _ := m.RawTiming(ctx, "one two three", out)
	if len(raw) != 3 || raw[2].Start != 0.6 {
		t.Errorf("Expected three synthetic timings, got %+v", raw)
	}
}

func TestMockDelayHonorsContext(t *testing.T) {
	cfg := config.Default()
	cfg.Mock.Delay = time.Second
	c, _ := NewMock(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.GenerateAudio(ctx, "slow", filepath.Join(t.TempDir(), "x.wav")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestRun(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	start := time.Now()
	err := run(context.Background(), 50*time.Millisecond, nil, "sleep", "5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Expected the process to be stopped promptly")
	}
}
