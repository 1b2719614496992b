// Package config holds the reader configuration. A Config value is built
// once at startup from defaults, the config file, environment variables and
// flags, and passed explicitly to every component that needs it.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Word highlight modes.
const (
	WordHighlightOff = iota
	WordHighlightNormal
	WordHighlightStandout
)

// Speed bounds for playback.
const (
	MinSpeed = 1.0
	MaxSpeed = 3.0
)

// Config contains all reader configuration options.
type Config struct {
	// Engine is the registry name of the speech backend.
	Engine string  `yaml:"engine" env:"LUE_ENGINE" envDefault:"edge"`
	Voice  string  `yaml:"voice" env:"LUE_VOICE"`
	Speed  float64 `yaml:"speed" env:"LUE_SPEED" envDefault:"1.0"`

	Audio     AudioConfig     `yaml:"audio"`
	Highlight HighlightConfig `yaml:"highlight"`
	Cache     CacheConfig     `yaml:"cache"`
	Splitter  SplitterConfig  `yaml:"splitter"`

	// Engine-specific configurations
	Edge  EdgeConfig  `yaml:"edge"`
	GTTS  GTTSConfig  `yaml:"gtts"`
	Piper PiperConfig `yaml:"piper"`
	Mock  MockConfig  `yaml:"mock"`
}

// AudioConfig controls the synthesis and playback pipeline.
type AudioConfig struct {
	QueueSize int           `yaml:"queue_size" env:"LUE_AUDIO_QUEUE_SIZE" envDefault:"4"`
	Buffers   int           `yaml:"buffers" env:"LUE_AUDIO_BUFFERS" envDefault:"7"`
	Overlap   float64       `yaml:"overlap" env:"LUE_AUDIO_OVERLAP" envDefault:"0.5"`
	Backoff   time.Duration `yaml:"backoff" env:"LUE_AUDIO_BACKOFF" envDefault:"2s"`
	Debounce  time.Duration `yaml:"debounce" env:"LUE_AUDIO_DEBOUNCE" envDefault:"100ms"`
	BufferDir string        `yaml:"buffer_dir" env:"LUE_AUDIO_BUFFER_DIR"`
	Player    string        `yaml:"player" env:"LUE_AUDIO_PLAYER" envDefault:"ffplay"`
	Probe     string        `yaml:"probe" env:"LUE_AUDIO_PROBE" envDefault:"ffprobe"`
}

// HighlightConfig controls sentence and word highlighting.
type HighlightConfig struct {
	Sentence bool   `yaml:"sentence" env:"LUE_HIGHLIGHT_SENTENCE" envDefault:"true"`
	WordMode int    `yaml:"word_mode" env:"LUE_HIGHLIGHT_WORD_MODE" envDefault:"1"`
	Color    string `yaml:"color" env:"LUE_HIGHLIGHT_COLOR" envDefault:"yellow"`
}

// CacheConfig controls the synthesized audio cache.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" env:"LUE_CACHE_ENABLED" envDefault:"true"`
	Dir              string `yaml:"dir" env:"LUE_CACHE_DIR"`
	MemoryMB         int    `yaml:"memory_mb" env:"LUE_CACHE_MEMORY_MB" envDefault:"64"`
	DiskMB           int    `yaml:"disk_mb" env:"LUE_CACHE_DISK_MB" envDefault:"512"`
	CompressionLevel int    `yaml:"compression_level" env:"LUE_CACHE_COMPRESSION_LEVEL" envDefault:"3"`
	TTLDays          int    `yaml:"ttl_days" env:"LUE_CACHE_TTL_DAYS" envDefault:"7"`
}

// SplitterConfig extends the sentence splitter.
type SplitterConfig struct {
	Abbreviations []string `yaml:"abbreviations" env:"LUE_SPLITTER_ABBREVIATIONS" envSeparator:","`
}

// EdgeConfig contains edge-tts settings.
type EdgeConfig struct {
	Binary            string        `yaml:"binary" env:"LUE_EDGE_BINARY" envDefault:"edge-tts"`
	Voice             string        `yaml:"voice" env:"LUE_EDGE_VOICE" envDefault:"en-US-JennyNeural"`
	Rate              string        `yaml:"rate" env:"LUE_EDGE_RATE"`
	WordTimings       bool          `yaml:"word_timings" env:"LUE_EDGE_WORD_TIMINGS" envDefault:"true"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"LUE_EDGE_REQUESTS_PER_MINUTE" envDefault:"120"`
	Timeout           time.Duration `yaml:"timeout" env:"LUE_EDGE_TIMEOUT" envDefault:"30s"`
}

// GTTSConfig contains gTTS settings.
type GTTSConfig struct {
	Binary            string        `yaml:"binary" env:"LUE_GTTS_BINARY" envDefault:"gtts-cli"`
	Language          string        `yaml:"language" env:"LUE_GTTS_LANGUAGE" envDefault:"en"`
	Slow              bool          `yaml:"slow" env:"LUE_GTTS_SLOW" envDefault:"false"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"LUE_GTTS_REQUESTS_PER_MINUTE" envDefault:"100"`
	Timeout           time.Duration `yaml:"timeout" env:"LUE_GTTS_TIMEOUT" envDefault:"30s"`
}

// PiperConfig contains Piper settings.
type PiperConfig struct {
	Binary      string        `yaml:"binary" env:"LUE_PIPER_BINARY" envDefault:"piper"`
	Model       string        `yaml:"model" env:"LUE_PIPER_MODEL"`
	Speaker     int           `yaml:"speaker" env:"LUE_PIPER_SPEAKER" envDefault:"0"`
	LengthScale float64       `yaml:"length_scale" env:"LUE_PIPER_LENGTH_SCALE" envDefault:"1.0"`
	Overlap     float64       `yaml:"overlap" env:"LUE_PIPER_OVERLAP" envDefault:"0.6"`
	Timeout     time.Duration `yaml:"timeout" env:"LUE_PIPER_TIMEOUT" envDefault:"30s"`
}

// MockConfig contains settings for the silent test engine.
type MockConfig struct {
	SampleRate  int           `yaml:"sample_rate" env:"LUE_MOCK_SAMPLE_RATE" envDefault:"16000"`
	WordSeconds float64       `yaml:"word_seconds" env:"LUE_MOCK_WORD_SECONDS" envDefault:"0.3"`
	Delay       time.Duration `yaml:"delay" env:"LUE_MOCK_DELAY" envDefault:"0s"`
	WordTimings bool          `yaml:"word_timings" env:"LUE_MOCK_WORD_TIMINGS" envDefault:"true"`
	FailCount   int           `yaml:"fail_count" env:"LUE_MOCK_FAIL_COUNT" envDefault:"0"`
}

// Default returns a Config with the default values.
func Default() Config {
	return Config{
		Engine: "edge",
		Speed:  1.0,
		Audio: AudioConfig{
			QueueSize: 4,
			Buffers:   7,
			Overlap:   0.5,
			Backoff:   2 * time.Second,
			Debounce:  100 * time.Millisecond,
			Player:    "ffplay",
			Probe:     "ffprobe",
		},
		Highlight: HighlightConfig{
			Sentence: true,
			WordMode: WordHighlightNormal,
			Color:    "yellow",
		},
		Cache: CacheConfig{
			Enabled:          true,
			MemoryMB:         64,
			DiskMB:           512,
			CompressionLevel: 3,
			TTLDays:          7,
		},
		Edge: EdgeConfig{
			Binary:            "edge-tts",
			Voice:             "en-US-JennyNeural",
			WordTimings:       true,
			RequestsPerMinute: 120,
			Timeout:           30 * time.Second,
		},
		GTTS: GTTSConfig{
			Binary:            "gtts-cli",
			Language:          "en",
			RequestsPerMinute: 100,
			Timeout:           30 * time.Second,
		},
		Piper: PiperConfig{
			Binary:      "piper",
			LengthScale: 1.0,
			Overlap:     0.6,
			Timeout:     30 * time.Second,
		},
		Mock: MockConfig{
			SampleRate:  16000,
			WordSeconds: 0.3,
			WordTimings: true,
		},
	}
}

// Validate checks if the configuration is valid and normalizes the engine
// name.
func (c *Config) Validate() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))

	if c.Speed < MinSpeed || c.Speed > MaxSpeed {
		return fmt.Errorf("speed must be between %.1f and %.1f, got %.2f", MinSpeed, MaxSpeed, c.Speed)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if c.Highlight.WordMode < WordHighlightOff || c.Highlight.WordMode > WordHighlightStandout {
		return fmt.Errorf("word_mode must be 0, 1 or 2, got %d", c.Highlight.WordMode)
	}
	if c.Cache.MemoryMB < 0 || c.Cache.DiskMB < 0 {
		return fmt.Errorf("cache sizes cannot be negative")
	}
	if c.Cache.CompressionLevel < 1 || c.Cache.CompressionLevel > 22 {
		return fmt.Errorf("compression_level must be between 1 and 22, got %d", c.Cache.CompressionLevel)
	}

	// Validate engine-specific config
	switch c.Engine {
	case "edge":
		if c.Edge.Binary == "" {
			return fmt.Errorf("edge config: binary cannot be empty")
		}
		if c.Edge.RequestsPerMinute < 1 {
			return fmt.Errorf("edge config: requests_per_minute must be positive")
		}
	case "gtts":
		if len(c.GTTS.Language) < 2 || len(c.GTTS.Language) > 5 {
			return fmt.Errorf("gtts config: language code must be 2-5 characters, got %q", c.GTTS.Language)
		}
		if c.GTTS.RequestsPerMinute < 1 {
			return fmt.Errorf("gtts config: requests_per_minute must be positive")
		}
	case "piper":
		if c.Piper.LengthScale <= 0 || c.Piper.LengthScale > 3.0 {
			return fmt.Errorf("piper config: length_scale must be between 0.1 and 3.0, got %f", c.Piper.LengthScale)
		}
		if c.Piper.Overlap < 0 {
			return fmt.Errorf("piper config: overlap cannot be negative")
		}
	case "mock":
		if c.Mock.SampleRate < 8000 {
			return fmt.Errorf("mock config: sample_rate must be at least 8000, got %d", c.Mock.SampleRate)
		}
		if c.Mock.WordSeconds <= 0 {
			return fmt.Errorf("mock config: word_seconds must be positive")
		}
	}

	return nil
}

// Validate checks the pipeline sizes. Every queued item holds a buffer slot,
// plus one being written, one playing and the previous one still finishing
// during the overlap.
func (c *AudioConfig) Validate() error {
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", c.QueueSize)
	}
	if c.Buffers < c.QueueSize+3 {
		return fmt.Errorf("buffers must be at least queue_size+3 (%d), got %d", c.QueueSize+3, c.Buffers)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("overlap cannot be negative, got %f", c.Overlap)
	}
	if c.Backoff < 0 || c.Debounce < 0 {
		return fmt.Errorf("backoff and debounce cannot be negative")
	}
	return nil
}

// VoiceFor returns the voice to use for the configured engine. The top-level
// Voice overrides the engine default.
func (c *Config) VoiceFor(engine string) string {
	if c.Voice != "" {
		return c.Voice
	}
	switch engine {
	case "edge":
		return c.Edge.Voice
	case "gtts":
		return c.GTTS.Language
	case "piper":
		return c.Piper.Model
	}
	return engine
}
