package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause     key.Binding
	NextSentence  key.Binding
	PrevSentence  key.Binding
	NextParagraph key.Binding
	PrevParagraph key.Binding
	SpeedUp       key.Binding
	SpeedDown     key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	AutoScroll    key.Binding
	SentenceHL    key.Binding
	WordHL        key.Binding
	Search        key.Binding
	Copy          key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause:     key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "play/pause")),
		NextSentence:  key.NewBinding(key.WithKeys("k", "right"), key.WithHelp("k/→", "next sentence")),
		PrevSentence:  key.NewBinding(key.WithKeys("j", "left"), key.WithHelp("j/←", "prev sentence")),
		NextParagraph: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "next paragraph")),
		PrevParagraph: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "prev paragraph")),
		SpeedUp:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		SpeedDown:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		ScrollUp:      key.NewBinding(key.WithKeys("u", "up"), key.WithHelp("u/↑", "scroll up")),
		ScrollDown:    key.NewBinding(key.WithKeys("n", "down"), key.WithHelp("n/↓", "scroll down")),
		PageUp:        key.NewBinding(key.WithKeys("i", "pgup"), key.WithHelp("i", "page up")),
		PageDown:      key.NewBinding(key.WithKeys("m", "pgdown"), key.WithHelp("m", "page down")),
		Top:           key.NewBinding(key.WithKeys("y", "home"), key.WithHelp("y", "beginning")),
		Bottom:        key.NewBinding(key.WithKeys("b", "end"), key.WithHelp("b", "end")),
		AutoScroll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-scroll")),
		SentenceHL:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sentence highlight")),
		WordHL:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "word highlight")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump to text")),
		Copy:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy sentence")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.PrevSentence, k.NextSentence, k.SpeedUp, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.SpeedUp, k.SpeedDown, k.Search, k.Copy},
		{k.PrevSentence, k.NextSentence, k.PrevParagraph, k.NextParagraph},
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.AutoScroll, k.SentenceHL, k.WordHL, k.Help, k.Quit},
	}
}
