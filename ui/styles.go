package ui

import "github.com/charmbracelet/lipgloss"

const ellipsis = "…"

var (
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Padding(0, 1)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarPositionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	statusBarPlayingStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(green).
				Padding(0, 1).
				Render

	statusBarPausedStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(gray).
				Padding(0, 1).
				Render

	chapterRuleStyle = lipgloss.NewStyle().Foreground(gray).Render

	searchPromptStyle = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
)

// colorNames maps the color names accepted in the config file to ANSI
// colors. Anything else is passed to lipgloss as is.
var colorNames = map[string]string{
	"black":   "0",
	"red":     "9",
	"green":   "10",
	"yellow":  "11",
	"blue":    "12",
	"magenta": "13",
	"cyan":    "14",
	"white":   "15",
}

func highlightColor(name string) lipgloss.Color {
	if c, ok := colorNames[name]; ok {
		return lipgloss.Color(c)
	}
	if name == "" {
		return lipgloss.Color(colorNames["yellow"])
	}
	return lipgloss.Color(name)
}
