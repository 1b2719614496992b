package ui

import (
	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/reader"
)

// Config contains TUI-specific configuration.
type Config struct {
	// Book path, watched for changes.
	Path string
	// ConfigFile is watched; highlight settings are reloaded when it changes.
	ConfigFile string
	Title      string

	EnableMouse bool `env:"LUE_MOUSE"`

	Highlight config.HighlightConfig
	// LoadHighlight rereads the highlight settings. Optional.
	LoadHighlight func() (config.HighlightConfig, error)
	// CacheSize reports the bytes held by the audio cache. Optional.
	CacheSize func() int64

	// Open starts a reading session. It is called again with the current
	// position when the book file changes.
	Open  Opener
	Start position.Position
	Speed float64
}

// Session is an open book and the controller reading it.
type Session struct {
	Controller *reader.Controller
	Model      *position.Model
}

// Opener opens the book at start.
type Opener func(start position.Position, speed float64) (Session, error)
