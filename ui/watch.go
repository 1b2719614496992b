package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

type (
	bookChangedMsg   struct{}
	configChangedMsg struct{}
)

// watcher reports writes to the book and the config file. It watches the
// parent directories so editors that replace files are noticed too.
type watcher struct {
	w      *fsnotify.Watcher
	book   string
	config string
}

func newWatcher(book, config string) *watcher {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		return nil
	}
	w := &watcher{w: fw, book: abs(book), config: abs(config)}
	for _, path := range []string{w.book, w.config} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := fw.Add(dir); err != nil {
			log.Error("error adding dir to fsnotify watcher", "dir", dir, "error", err)
			continue
		}
		log.Debug("fsnotify watching dir", "dir", dir)
	}
	return w
}

// next waits for the next relevant change.
func (w *watcher) next() tea.Msg {
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			switch filepath.Clean(event.Name) {
			case w.book:
				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				return bookChangedMsg{}
			case w.config:
				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				return configChangedMsg{}
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "error", err)
		}
	}
}

func (w *watcher) close() {
	if err := w.w.Close(); err != nil {
		log.Debug("fsnotify close failed", "error", err)
	}
}

func abs(path string) string {
	if path == "" {
		return ""
	}
	if a, err := filepath.Abs(path); err == nil {
		return filepath.Clean(a)
	}
	return filepath.Clean(path)
}
