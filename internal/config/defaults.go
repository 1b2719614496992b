package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultYAML is written by `lue config` when no config file exists. Its
// values match Default.
const DefaultYAML = `# speech engine: edge, gtts, piper or mock
engine: "edge"
# voice override; empty uses the engine's default voice
voice: ""
# playback speed (1.0 to 3.0)
speed: 1.0

audio:
  # sentences synthesized ahead of playback
  queue_size: 4
  # rotating buffer files, at least queue_size + 3
  buffers: 7
  # seconds of overlap between consecutive sentences at 1.0x
  overlap: 0.5
  # delay before retrying a sentence that failed to synthesize
  backoff: "2s"
  # pause before restarting playback after navigation
  debounce: "100ms"
  # buffer_dir: "~/.cache/lue/buffers"
  player: "ffplay"
  probe: "ffprobe"

highlight:
  sentence: true
  # 0 = off, 1 = normal, 2 = standout
  word_mode: 1
  color: "yellow"

cache:
  enabled: true
  # dir: "~/.cache/lue/audio"
  memory_mb: 64
  disk_mb: 512
  compression_level: 3
  ttl_days: 7

splitter:
  # extra abbreviations that never end a sentence
  abbreviations: []

edge:
  binary: "edge-tts"
  voice: "en-US-JennyNeural"
  # rate: "+10%"
  word_timings: true
  requests_per_minute: 120
  timeout: "30s"

gtts:
  binary: "gtts-cli"
  language: "en"
  slow: false
  requests_per_minute: 100
  timeout: "30s"

piper:
  binary: "piper"
  # model: "~/.local/share/piper/en_US-lessac-medium.onnx"
  speaker: 0
  length_scale: 1.0
  overlap: 0.6
  timeout: "30s"

mock:
  sample_rate: 16000
  word_seconds: 0.3
  delay: "0s"
  word_timings: true
  fail_count: 0
`

// WriteDefault writes DefaultYAML to path unless a file already exists
// there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
	default:
		return false, fmt.Errorf("%s: config files are YAML, use a .yml or .yaml name", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("unable to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to create config file: %w", err)
	}
	if _, err := f.WriteString(DefaultYAML); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("unable to write config file: %w", err)
	}
	return true, f.Close()
}

// LoadFile reads the config file at path on its own, the way the reader
// would at startup, and validates it.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	BindEnv(v)
	if err := v.ReadInConfig(); err != nil {
		return Default(), fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return LoadFromViper(v)
}
