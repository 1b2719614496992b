// Package ui provides the terminal front end of the reader.
package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/reader"
)

const (
	statusMessageTimeout = time.Second * 3
	statusBarHeight      = 1
)

// NewProgram returns a new Tea program reading the book described by cfg.
// Reading sessions stop when ctx is cancelled.
func NewProgram(ctx context.Context, cfg Config) *tea.Program {
	log.Debug("starting lue", "path", cfg.Path, "mouse", cfg.EnableMouse)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(ctx, cfg), opts...)
}

type (
	stateMsg struct {
		c     *reader.Controller
		state reader.State
	}
	sessionOpenedMsg struct {
		session Session
		err     error
	}
	sessionDoneMsg struct {
		c   *reader.Controller
		err error
	}
	statusMessageTimeoutMsg struct{}
)

type statusMessage struct {
	message string
	isError bool
}

type model struct {
	ctx     context.Context
	cfg     Config
	session Session
	doc     *document
	state   reader.State
	hl      highlighter
	watcher *watcher

	viewport   viewport.Model
	help       help.Model
	keys       keyMap
	search     textinput.Model
	searching  bool
	showHelp   bool
	autoScroll bool
	reloading  bool
	quitting   bool

	width  int
	height int

	statusMessage      statusMessage
	statusMessageTimer *time.Timer
	fatalErr           error
}

func newModel(ctx context.Context, cfg Config) model {
	ti := textinput.New()
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.Placeholder = "jump to text"
	ti.CharLimit = 200

	m := model{
		ctx:        ctx,
		cfg:        cfg,
		hl:         newHighlighter(cfg.Highlight),
		viewport:   viewport.New(0, 0),
		help:       help.New(),
		keys:       defaultKeyMap(),
		search:     ti,
		autoScroll: true,
	}

	session, err := cfg.Open(cfg.Start, cfg.Speed)
	if err != nil {
		log.Error("unable to open book", "path", cfg.Path, "error", err)
		m.fatalErr = err
		return m
	}
	m.session = session
	m.state = session.Controller.Snapshot()
	m.watcher = newWatcher(cfg.Path, cfg.ConfigFile)
	return m
}

func (m model) Init() tea.Cmd {
	if m.fatalErr != nil {
		return nil
	}
	cmds := []tea.Cmd{runSession(m.ctx, m.session.Controller), waitForState(m.session.Controller)}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.next)
	}
	return tea.Batch(cmds...)
}

// runSession runs the controller loop until it quits.
func runSession(ctx context.Context, c *reader.Controller) tea.Cmd {
	return func() tea.Msg {
		err := c.Run(ctx)
		return sessionDoneMsg{c: c, err: err}
	}
}

// waitForState waits for the next state published by c.
func waitForState(c *reader.Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-c.Updates():
			return stateMsg{c: c, state: s}
		case <-c.Done():
			return nil
		}
	}
}

// reopen stops the current session and opens the book again at the same
// place.
func reopen(c *reader.Controller, open Opener) tea.Cmd {
	return func() tea.Msg {
		pos, speed := c.Position(), c.Speed()
		c.Quit()
		<-c.Done()
		s, err := open(pos, speed)
		return sessionOpenedMsg{session: s, err: err}
	}
}

func quit(c *reader.Controller) tea.Cmd {
	return func() tea.Msg {
		c.Quit()
		return nil
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

func (m *model) showStatusMessage(msg statusMessage) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m *model) setSize(w, h int) {
	m.width, m.height = w, h
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight
	if m.showHelp || m.searching {
		m.viewport.Height -= lipgloss.Height(m.footerView())
	}
	m.viewport.Height = max(m.viewport.Height, 1)
	m.help.Width = w
}

// refresh renders the document and keeps the sentence being read in view.
func (m *model) refresh() {
	if m.doc == nil {
		return
	}
	m.viewport.SetContent(m.doc.Render(m.state, m.hl))
	if !m.autoScroll {
		return
	}
	line := m.doc.LineOf(m.state.UIPosition)
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height-1 {
		m.viewport.SetYOffset(max(0, line-m.viewport.Height/3))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.scrolled()
		return m, cmd

	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		if m.session.Model != nil {
			m.doc = newDocument(m.session.Model, msg.Width)
			m.refresh()
		}

	case stateMsg:
		if msg.c != m.session.Controller {
			return m, nil
		}
		m.state = msg.state
		m.refresh()
		return m, waitForState(msg.c)

	case sessionDoneMsg:
		if msg.err != nil {
			log.Error("reading session failed", "error", msg.err)
		}
		if msg.c != m.session.Controller || m.reloading {
			return m, nil
		}
		return m, tea.Quit

	case sessionOpenedMsg:
		m.reloading = false
		if msg.err != nil {
			log.Error("unable to reload book", "path", m.cfg.Path, "error", msg.err)
			m.fatalErr = msg.err
			return m, nil
		}
		m.session = msg.session
		m.state = msg.session.Controller.Snapshot()
		m.doc = newDocument(m.session.Model, m.width)
		m.refresh()
		return m, tea.Batch(
			runSession(m.ctx, m.session.Controller),
			waitForState(m.session.Controller),
			m.showStatusMessage(statusMessage{message: "Reloaded book"}),
		)

	case bookChangedMsg:
		cmds = append(cmds, m.watcher.next)
		if m.reloading || m.quitting {
			return m, tea.Batch(cmds...)
		}
		log.Info("book changed, reloading", "path", m.cfg.Path)
		m.reloading = true
		cmds = append(cmds, reopen(m.session.Controller, m.cfg.Open))

	case configChangedMsg:
		cmds = append(cmds, m.watcher.next)
		if m.cfg.LoadHighlight == nil {
			break
		}
		hl, err := m.cfg.LoadHighlight()
		if err != nil {
			log.Warn("could not reload config", "error", err)
			cmds = append(cmds, m.showStatusMessage(statusMessage{message: "Config error: " + err.Error(), isError: true}))
			break
		}
		m.cfg.Highlight = hl
		m.hl = newHighlighter(hl)
		m.refresh()
		cmds = append(cmds, m.showStatusMessage(statusMessage{message: "Reloaded config"}))

	case statusMessageTimeoutMsg:
		m.statusMessage = statusMessage{}
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.session.Controller
	if m.quitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.watcher != nil {
			m.watcher.close()
		}
		if m.reloading {
			return m, tea.Quit
		}
		return m, quit(c)

	case key.Matches(msg, m.keys.PlayPause):
		m.autoScroll = true
		c.TogglePause()
	case key.Matches(msg, m.keys.NextSentence):
		m.autoScroll = true
		c.NextSentence()
	case key.Matches(msg, m.keys.PrevSentence):
		m.autoScroll = true
		c.PrevSentence()
	case key.Matches(msg, m.keys.NextParagraph):
		m.autoScroll = true
		c.NextParagraph()
	case key.Matches(msg, m.keys.PrevParagraph):
		m.autoScroll = true
		c.PrevParagraph()
	case key.Matches(msg, m.keys.SpeedUp):
		c.SpeedUp()
	case key.Matches(msg, m.keys.SpeedDown):
		c.SpeedDown()
	case key.Matches(msg, m.keys.Top):
		m.autoScroll = true
		c.Jump(m.session.Model.First())
	case key.Matches(msg, m.keys.Bottom):
		m.autoScroll = true
		c.Jump(m.session.Model.Last())

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		m.scrolled()
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		m.scrolled()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		m.scrolled()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		m.scrolled()

	case key.Matches(msg, m.keys.AutoScroll):
		m.autoScroll = !m.autoScroll
		m.refresh()
		state := "off"
		if m.autoScroll {
			state = "on"
		}
		return m, m.showStatusMessage(statusMessage{message: "Auto-scroll " + state})

	case key.Matches(msg, m.keys.SentenceHL):
		m.cfg.Highlight.Sentence = !m.cfg.Highlight.Sentence
		m.hl = newHighlighter(m.cfg.Highlight)
		m.refresh()
	case key.Matches(msg, m.keys.WordHL):
		m.cfg.Highlight.WordMode = (m.cfg.Highlight.WordMode + 1) % (config.WordHighlightStandout + 1)
		m.hl = newHighlighter(m.cfg.Highlight)
		m.refresh()

	case key.Matches(msg, m.keys.Copy):
		sentence, ok := m.session.Model.Sentence(m.state.UIPosition)
		if !ok {
			break
		}
		// Copy using OSC 52
		termenv.Copy(sentence)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(sentence)
		return m, m.showStatusMessage(statusMessage{message: "Copied sentence"})

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Reset()
		m.setSize(m.width, m.height)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.setSize(m.width, m.height)
		m.refresh()

	case msg.String() == "ctrl+z":
		return m, tea.Suspend
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.setSize(m.width, m.height)
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.search.Value())
		m.searching = false
		m.search.Blur()
		m.setSize(m.width, m.height)
		if query == "" {
			return m, nil
		}
		if len(m.session.Model.Search(query, 1)) == 0 {
			return m, m.showStatusMessage(statusMessage{message: "No match for " + query, isError: true})
		}
		m.autoScroll = true
		m.session.Controller.JumpToMatch(query)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// scrolled handles a manual scroll. The view stops following the audio,
// and while paused the highlight moves to the top of the view.
func (m *model) scrolled() {
	m.autoScroll = false
	if m.doc == nil || !m.state.Paused {
		return
	}
	pos := m.doc.PositionAt(m.viewport.YOffset)
	if pos.Chapter != m.state.UIPosition.Chapter || pos.Paragraph != m.state.UIPosition.Paragraph {
		m.session.Controller.ScrollTo(pos)
	}
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr)
	}
	if m.doc == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	m.statusBarView(&b)
	if footer := m.footerView(); footer != "" {
		fmt.Fprint(&b, "\n"+footer)
	}
	return b.String()
}

func (m model) footerView() string {
	switch {
	case m.searching:
		return "  " + m.search.View()
	case m.showHelp:
		return m.help.View(m.keys)
	}
	return ""
}

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.statusMessage.message != ""

	logo := logoStyle.Render("lue")

	// Play state badge
	var badge string
	switch {
	case m.state.TextOnly:
		badge = statusBarPausedStyle("text")
	case m.state.Paused:
		badge = statusBarPausedStyle("⏸")
	default:
		badge = statusBarPlayingStyle("▶")
	}

	percent := math.Max(0, math.Min(100, m.state.Progress))
	progress := statusBarPositionStyle(fmt.Sprintf(" %3.f%% ", percent))
	helpNote := statusBarHelpStyle(" ? Help ")

	var note string
	if showStatusMessage {
		note = m.statusMessage.message
	} else {
		parts := []string{}
		if m.cfg.Title != "" {
			parts = append(parts, m.cfg.Title)
		}
		parts = append(parts, fmt.Sprintf("Ch %d/%d", m.state.Position.Chapter+1, m.session.Model.Chapters()))
		if sp := reader.SpeedDisplay(m.state.Speed); sp != "" {
			parts = append(parts, sp)
		}
		if m.cfg.CacheSize != nil {
			if size := m.cfg.CacheSize(); size > 0 {
				parts = append(parts, "cache "+humanize.IBytes(uint64(size))) //nolint:gosec
			}
		}
		if m.state.Err != "" {
			parts = append(parts, m.state.Err)
		}
		note = strings.Join(parts, " · ")
	}

	fixed := ansi.PrintableRuneWidth(logo) +
		ansi.PrintableRuneWidth(badge) +
		ansi.PrintableRuneWidth(progress) +
		ansi.PrintableRuneWidth(helpNote)
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, m.width-fixed)), ellipsis) //nolint:gosec

	style := statusBarNoteStyle
	switch {
	case showStatusMessage && m.statusMessage.isError, !showStatusMessage && m.state.Err != "":
		style = statusBarErrorStyle
	case showStatusMessage:
		style = statusBarMessageStyle
	}
	note = style(note)

	padding := max(0, m.width-fixed-ansi.PrintableRuneWidth(note))
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		badge,
		note,
		emptySpace,
		progress,
		helpNote,
	)
}

func errorView(err error) string {
	return "\n" + indent(statusBarErrorStyle(" ERROR ")+" "+err.Error(), margin) + "\n\n" +
		indent(statusBarNoteStyle("Press any key to exit"), margin)
}
