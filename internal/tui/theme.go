package tui

import (
	"github.com/charmbracelet/lipgloss"

	"cocktailchat/internal/chat"
	"cocktailchat/internal/format"
)

type palette struct {
	neon, ice, lime, citrus lipgloss.Color
	night, bar, glass, dim  lipgloss.Color
	ink                     lipgloss.Color
}

var barPalette = palette{
	neon:   lipgloss.Color("#ff71ce"),
	ice:    lipgloss.Color("#01cdfe"),
	lime:   lipgloss.Color("#05ffa1"),
	citrus: lipgloss.Color("#ffd166"),
	night:  lipgloss.Color("#120924"),
	bar:    lipgloss.Color("#1b0f35"),
	glass:  lipgloss.Color("#f3f3ff"),
	dim:    lipgloss.Color("#9ca3d8"),
	ink:    lipgloss.Color("#22062f"),
}

// uiTheme groups styles by what they dress on screen: the bar frame, the
// conversation itself, and the closing-time prompt.
type uiTheme struct {
	backdrop lipgloss.Style
	marquee  lipgloss.Style
	tabOn    lipgloss.Style
	tabOff   lipgloss.Style
	counter  lipgloss.Style
	heading  lipgloss.Style
	ticket   lipgloss.Style
	pour     lipgloss.Style
	hint     lipgloss.Style

	speaker map[chat.Role]lipgloss.Style
	reply   format.Styles
	typing  lipgloss.Style

	statusOK   lipgloss.Style
	statusFail lipgloss.Style
	statKey    lipgloss.Style
	statValue  lipgloss.Style

	closingFrame  lipgloss.Style
	closingRule   lipgloss.Style
	closingAction lipgloss.Style
}

func framed(p palette, border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(p.bar).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func newTheme() uiTheme {
	p := barPalette
	fg := lipgloss.NewStyle().Foreground
	return uiTheme{
		backdrop: lipgloss.NewStyle().Background(p.night).Foreground(p.glass).Padding(0, 1),
		marquee:  framed(p, p.ice).Foreground(p.glass),
		tabOn:    lipgloss.NewStyle().Background(p.neon).Foreground(p.ink).Bold(true).Padding(0, 1),
		tabOff:   lipgloss.NewStyle().Background(lipgloss.Color("#2a184a")).Foreground(p.dim).Padding(0, 1),
		counter:  framed(p, p.ice),
		heading:  fg(p.lime).Bold(true),
		ticket:   framed(p, p.neon).Foreground(p.dim),
		pour:     framed(p, p.lime),
		hint:     fg(p.dim),

		speaker: map[chat.Role]lipgloss.Style{
			chat.RoleUser:      fg(p.lime).Bold(true),
			chat.RoleAssistant: fg(p.neon).Bold(true),
			chat.RoleSystem:    fg(p.dim).Bold(true),
		},
		reply: format.Styles{
			Text:   fg(p.glass),
			Bold:   fg(p.citrus).Bold(true),
			Italic: fg(p.ice).Italic(true),
		},
		typing: fg(p.dim).Italic(true),

		statusOK:   fg(p.ice).Bold(true),
		statusFail: fg(p.neon).Bold(true),
		statKey:    fg(p.ice),
		statValue:  fg(p.glass),

		closingFrame: lipgloss.NewStyle().
			Background(p.bar).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(p.ice).
			Padding(1, 2),
		closingRule:   fg(p.citrus).Bold(true),
		closingAction: fg(p.neon).Bold(true),
	}
}
