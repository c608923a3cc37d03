// Package ui styles the terminal chat per theme.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quantumx/quantumx/pkg/prefs"
)

// Palette mirrors the web page's CSS variables.
var (
	DarkText    = lipgloss.Color("#e8e6f0")
	DarkMuted   = lipgloss.Color("#8b8a97")
	DarkBot     = lipgloss.Color("#1c1f2e")
	LightText   = lipgloss.Color("#1d1b26")
	LightMuted  = lipgloss.Color("#6b6a75")
	LightBot    = lipgloss.Color("#ececf4")
	Accent      = lipgloss.Color("#6c5ce7")
	UserAccent  = lipgloss.Color("#a855f7")
	Success     = lipgloss.Color("#34d399")
	Warning     = lipgloss.Color("#fbbf24")
	Destructive = lipgloss.Color("#f87171")
)

// Styles holds the lipgloss styles for one theme.
type Styles struct {
	Theme    prefs.Theme
	Title    lipgloss.Style
	User     lipgloss.Style
	Bot      lipgloss.Style
	Fallback lipgloss.Style
	Muted    lipgloss.Style
	Online   lipgloss.Style
	Offline  lipgloss.Style
	Error    lipgloss.Style
}

// NewStyles returns the styles for theme; anything but light is dark.
func NewStyles(theme prefs.Theme) Styles {
	text, muted, bot := DarkText, DarkMuted, DarkBot
	if theme == prefs.ThemeLight {
		text, muted, bot = LightText, LightMuted, LightBot
	} else {
		theme = prefs.ThemeDark
	}

	bubble := lipgloss.NewStyle().
		Foreground(text).
		Background(bot).
		Padding(0, 1)

	return Styles{
		Theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Accent),
		User:     lipgloss.NewStyle().Bold(true).Foreground(UserAccent),
		Bot:      bubble,
		Fallback: bubble.Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(Warning),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Online:   lipgloss.NewStyle().Foreground(Success),
		Offline:  lipgloss.NewStyle().Foreground(Warning),
		Error:    lipgloss.NewStyle().Foreground(Destructive),
	}
}

func (s Styles) Header(name string, online bool) string {
	status := s.Online.Render("Online")
	if !online {
		status = s.Offline.Render("Offline · resposta local")
	}
	return s.Title.Render(name) + "  " + status
}

func (s Styles) UserLine(text string) string {
	return s.User.Render("você") + " " + text
}

// BotLine renders a reply; fallback replies get the warning border.
func (s Styles) BotLine(text string, fallback bool) string {
	text = strings.TrimRight(text, "\n")
	if fallback {
		return s.Fallback.Render(text)
	}
	return s.Bot.Render(text)
}
