package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/reader"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	book := testModel()
	cfg := Config{
		Title:     "Test Book",
		Highlight: config.Default().Highlight,
		Speed:     1.5,
		Open: func(start position.Position, speed float64) (Session, error) {
			c := reader.New(reader.Options{Model: book, Start: start, Speed: speed})
			return Session{Controller: c, Model: book}, nil
		},
	}
	m := newModel(context.Background(), cfg)
	if m.fatalErr != nil {
		t.Fatalf("Unexpected error: %v", m.fatalErr)
	}
	if m.watcher != nil {
		t.Cleanup(m.watcher.close)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(model)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewShowsBookAndStatus(t *testing.T) {
	m := newTestModel(t)
	view := stripANSI(m.View())

	for _, want := range []string{"One two three.", "Chapter two text.", "Test Book", "Ch 1/2", "text", "? Help"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
	if !strings.Contains(view, reader.SpeedDisplay(1.5)) {
		t.Errorf("Expected speed %q in the status bar", reader.SpeedDisplay(1.5))
	}
}

func TestSearchPrompt(t *testing.T) {
	m := newTestModel(t)
	height := m.viewport.Height

	next, _ := m.Update(keyPress("/"))
	m = next.(model)
	if !m.searching {
		t.Fatal("Expected search prompt to open")
	}
	if m.viewport.Height >= height {
		t.Errorf("Expected viewport to shrink for the prompt, got %d", m.viewport.Height)
	}

	next, _ = m.Update(keyPress("esc"))
	m = next.(model)
	if m.searching || m.viewport.Height != height {
		t.Errorf("Expected prompt to close and viewport height %d, got %v %d", height, m.searching, m.viewport.Height)
	}

	next, _ = m.Update(keyPress("/"))
	m = next.(model)
	m.search.SetValue("zebra crossing")
	next, _ = m.Update(keyPress("enter"))
	m = next.(model)
	if m.searching {
		t.Error("Expected prompt to close on enter")
	}
	if !m.statusMessage.isError || !strings.Contains(m.statusMessage.message, "No match") {
		t.Errorf("Expected a no match error, got %+v", m.statusMessage)
	}
}

func TestToggles(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(keyPress("a"))
	m = next.(model)
	if m.autoScroll {
		t.Error("Expected auto-scroll to be off")
	}
	if cmd == nil || m.statusMessage.message != "Auto-scroll off" {
		t.Errorf("Expected a status message, got %q", m.statusMessage.message)
	}

	next, _ = m.Update(keyPress("w"))
	m = next.(model)
	if m.cfg.Highlight.WordMode != config.WordHighlightStandout {
		t.Errorf("Expected word mode %d, got %d", config.WordHighlightStandout, m.cfg.Highlight.WordMode)
	}
	next, _ = m.Update(keyPress("w"))
	m = next.(model)
	if m.cfg.Highlight.WordMode != config.WordHighlightOff {
		t.Errorf("Expected word mode to wrap to off, got %d", m.cfg.Highlight.WordMode)
	}

	next, _ = m.Update(keyPress("s"))
	m = next.(model)
	if m.hl.sentenceOn {
		t.Error("Expected sentence highlight to be off")
	}

	next, _ = m.Update(keyPress("?"))
	m = next.(model)
	if !m.showHelp || !strings.Contains(m.View(), "play/pause") {
		t.Error("Expected the full help to be shown")
	}
}

func TestStaleStateIgnored(t *testing.T) {
	m := newTestModel(t)
	other := reader.New(reader.Options{Model: testModel()})

	_, cmd := m.Update(stateMsg{c: other, state: reader.State{Progress: 50}})
	if cmd != nil {
		t.Error("Expected no command for a stale session")
	}

	_, cmd = m.Update(stateMsg{c: m.session.Controller, state: reader.State{Progress: 50}})
	if cmd == nil {
		t.Error("Expected to keep waiting for state updates")
	}
}

func TestNavigationAndQuit(t *testing.T) {
	m := newTestModel(t)
	c := m.session.Controller

	done := make(chan tea.Msg, 1)
	go func() { done <- runSession(context.Background(), c)() }()

	next, _ := m.Update(keyPress("k"))
	m = next.(model)

	want := position.Position{Chapter: 0, Paragraph: 0, Sentence: 1}
	deadline := time.Now().Add(2 * time.Second)
	for c.Position() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected position %v, got %v", want, c.Position())
		}
		time.Sleep(10 * time.Millisecond)
	}

	next, cmd := m.Update(keyPress("q"))
	m = next.(model)
	if cmd == nil || !m.quitting {
		t.Fatal("Expected a quit command")
	}
	cmd()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the session to stop")
	}
	_, cmd = m.Update(msg)
	if cmd == nil {
		t.Fatal("Expected the program to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected a quit message")
	}
}
