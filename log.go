package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/lue-reader/lue/internal/config"
)

// setupLog sends all logging to a file in the user cache dir; the terminal
// belongs to the TUI. LUE_DEBUG enables debug output.
func setupLog() (func() error, error) {
	logFile, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetLevel(log.InfoLevel)
	if on, _ := strconv.ParseBool(os.Getenv(config.EnvPrefix + "_DEBUG")); on {
		log.SetLevel(log.DebugLevel)
	}
	return f.Close, nil
}
