package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the reader.
const EnvPrefix = "LUE"

// FromEnv returns the defaults overlaid with LUE_* environment variables.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Default(), fmt.Errorf("error parsing environment: %w", err)
	}
	return cfg, nil
}

// BindEnv makes v resolve "audio.queue_size" from LUE_AUDIO_QUEUE_SIZE and so
// on, so environment variables take precedence over the config file.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadFromViper builds a Config from the environment and the values set in
// v, then validates it.
func LoadFromViper(v *viper.Viper) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}

	// Global settings
	if v.IsSet("engine") {
		cfg.Engine = v.GetString("engine")
	}
	if v.IsSet("voice") {
		cfg.Voice = v.GetString("voice")
	}
	if v.IsSet("speed") {
		cfg.Speed = v.GetFloat64("speed")
	}

	loadAudio(v, &cfg.Audio)
	loadHighlight(v, &cfg.Highlight)
	loadCache(v, &cfg.Cache)
	if v.IsSet("splitter.abbreviations") {
		cfg.Splitter.Abbreviations = v.GetStringSlice("splitter.abbreviations")
	}

	loadEdge(v, &cfg.Edge)
	loadGTTS(v, &cfg.GTTS)
	loadPiper(v, &cfg.Piper)
	loadMock(v, &cfg.Mock)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadAudio(v *viper.Viper, cfg *AudioConfig) {
	if v.IsSet("audio.queue_size") {
		cfg.QueueSize = v.GetInt("audio.queue_size")
	}
	if v.IsSet("audio.buffers") {
		cfg.Buffers = v.GetInt("audio.buffers")
	}
	if v.IsSet("audio.overlap") {
		cfg.Overlap = v.GetFloat64("audio.overlap")
	}
	if v.IsSet("audio.backoff") {
		cfg.Backoff = v.GetDuration("audio.backoff")
	}
	if v.IsSet("audio.debounce") {
		cfg.Debounce = v.GetDuration("audio.debounce")
	}
	if v.IsSet("audio.buffer_dir") {
		cfg.BufferDir = ExpandPath(v.GetString("audio.buffer_dir"))
	}
	if v.IsSet("audio.player") {
		cfg.Player = v.GetString("audio.player")
	}
	if v.IsSet("audio.probe") {
		cfg.Probe = v.GetString("audio.probe")
	}
}

func loadHighlight(v *viper.Viper, cfg *HighlightConfig) {
	if v.IsSet("highlight.sentence") {
		cfg.Sentence = v.GetBool("highlight.sentence")
	}
	if v.IsSet("highlight.word_mode") {
		cfg.WordMode = v.GetInt("highlight.word_mode")
	}
	if v.IsSet("highlight.color") {
		cfg.Color = v.GetString("highlight.color")
	}
}

func loadCache(v *viper.Viper, cfg *CacheConfig) {
	if v.IsSet("cache.enabled") {
		cfg.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("cache.dir") {
		cfg.Dir = ExpandPath(v.GetString("cache.dir"))
	}
	if v.IsSet("cache.memory_mb") {
		cfg.MemoryMB = v.GetInt("cache.memory_mb")
	}
	if v.IsSet("cache.disk_mb") {
		cfg.DiskMB = v.GetInt("cache.disk_mb")
	}
	if v.IsSet("cache.compression_level") {
		cfg.CompressionLevel = v.GetInt("cache.compression_level")
	}
	if v.IsSet("cache.ttl_days") {
		cfg.TTLDays = v.GetInt("cache.ttl_days")
	}
}

func loadEdge(v *viper.Viper, cfg *EdgeConfig) {
	if v.IsSet("edge.binary") {
		cfg.Binary = v.GetString("edge.binary")
	}
	if v.IsSet("edge.voice") {
		cfg.Voice = v.GetString("edge.voice")
	}
	if v.IsSet("edge.rate") {
		cfg.Rate = v.GetString("edge.rate")
	}
	if v.IsSet("edge.word_timings") {
		cfg.WordTimings = v.GetBool("edge.word_timings")
	}
	if v.IsSet("edge.requests_per_minute") {
		cfg.RequestsPerMinute = v.GetInt("edge.requests_per_minute")
	}
	if v.IsSet("edge.timeout") {
		cfg.Timeout = v.GetDuration("edge.timeout")
	}
}

func loadGTTS(v *viper.Viper, cfg *GTTSConfig) {
	if v.IsSet("gtts.binary") {
		cfg.Binary = v.GetString("gtts.binary")
	}
	if v.IsSet("gtts.language") {
		cfg.Language = v.GetString("gtts.language")
	}
	if v.IsSet("gtts.slow") {
		cfg.Slow = v.GetBool("gtts.slow")
	}
	if v.IsSet("gtts.requests_per_minute") {
		cfg.RequestsPerMinute = v.GetInt("gtts.requests_per_minute")
	}
	if v.IsSet("gtts.timeout") {
		cfg.Timeout = v.GetDuration("gtts.timeout")
	}
}

func loadPiper(v *viper.Viper, cfg *PiperConfig) {
	if v.IsSet("piper.binary") {
		cfg.Binary = v.GetString("piper.binary")
	}
	if v.IsSet("piper.model") {
		cfg.Model = ExpandPath(v.GetString("piper.model"))
	}
	if v.IsSet("piper.speaker") {
		cfg.Speaker = v.GetInt("piper.speaker")
	}
	if v.IsSet("piper.length_scale") {
		cfg.LengthScale = v.GetFloat64("piper.length_scale")
	}
	if v.IsSet("piper.overlap") {
		cfg.Overlap = v.GetFloat64("piper.overlap")
	}
	if v.IsSet("piper.timeout") {
		cfg.Timeout = v.GetDuration("piper.timeout")
	}
}

func loadMock(v *viper.Viper, cfg *MockConfig) {
	if v.IsSet("mock.sample_rate") {
		cfg.SampleRate = v.GetInt("mock.sample_rate")
	}
	if v.IsSet("mock.word_seconds") {
		cfg.WordSeconds = v.GetFloat64("mock.word_seconds")
	}
	if v.IsSet("mock.delay") {
		cfg.Delay = v.GetDuration("mock.delay")
	}
	if v.IsSet("mock.word_timings") {
		cfg.WordTimings = v.GetBool("mock.word_timings")
	}
	if v.IsSet("mock.fail_count") {
		cfg.FailCount = v.GetInt("mock.fail_count")
	}
}
