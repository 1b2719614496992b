package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
)

// AppName names the config, cache and log directories.
const AppName = "lue"

// ExpandPath expands a leading tilde and environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if expanded, err := homedir.Expand(path); err == nil {
			path = expanded
		}
	}
	return os.ExpandEnv(path)
}

// ConfigDirs returns the directories searched for lue.yml, most specific
// first: $LUE_CONFIG_HOME, $XDG_CONFIG_HOME/lue, then the platform dirs.
func ConfigDirs() ([]string, error) {
	scope := gap.NewScope(gap.User, AppName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, AppName)}, dirs...)
	}
	if c := os.Getenv("LUE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

// CacheDir returns the user cache directory for lue.
func CacheDir() (string, error) {
	scope := gap.NewScope(gap.User, AppName)
	dir, err := scope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("could not find cache directory: %w", err)
	}
	return dir, nil
}

// LogPath returns the path of the log file.
func LogPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName+".log"), nil
}

// ResolveDirs fills in the buffer and cache directories when they are not
// configured and creates them.
func (c *Config) ResolveDirs() error {
	if c.Audio.BufferDir == "" || c.Cache.Dir == "" {
		base, err := CacheDir()
		if err != nil {
			return err
		}
		if c.Audio.BufferDir == "" {
			c.Audio.BufferDir = filepath.Join(base, "buffers")
		}
		if c.Cache.Dir == "" {
			c.Cache.Dir = filepath.Join(base, "audio")
		}
	}

	for _, dir := range []string{c.Audio.BufferDir, c.Cache.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create %s: %w", dir, err)
		}
	}
	return nil
}
