package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantumx/quantumx/pkg/prefs"
)

func TestNewStylesPerTheme(t *testing.T) {
	dark := NewStyles(prefs.ThemeDark)
	light := NewStyles(prefs.ThemeLight)

	assert.Equal(t, prefs.ThemeDark, dark.Theme)
	assert.Equal(t, prefs.ThemeLight, light.Theme)
	assert.Equal(t, DarkBot, dark.Bot.GetBackground())
	assert.Equal(t, LightBot, light.Bot.GetBackground())
	assert.Equal(t, LightMuted, light.Muted.GetForeground())
}

func TestNewStylesUnknownThemeIsDark(t *testing.T) {
	assert.Equal(t, prefs.ThemeDark, NewStyles("").Theme)
}

func TestRenderKeepsText(t *testing.T) {
	s := NewStyles(prefs.ThemeLight)
	assert.Contains(t, s.Header("QuantumX", true), "Online")
	assert.Contains(t, s.Header("QuantumX", false), "Offline")
	assert.Contains(t, s.UserLine("oi"), "oi")
	assert.Contains(t, s.BotLine("resposta\n", false), "resposta")
	assert.Contains(t, s.BotLine("sem rede", true), "sem rede")
	assert.Equal(t, Warning, s.Fallback.GetBorderLeftForeground())
}
