package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestResolveThemeColors(t *testing.T) {
	assert.Equal(t, lipgloss.Color(terminalRed), resolveThemeColors("Terminal").Red)
	assert.Equal(t, newKanagawaColors(), resolveThemeColors("does-not-exist"))
}

func TestNormalizeThemeName(t *testing.T) {
	assert.Equal(t, "kanagawa", normalizeThemeName("  Kanagawa "))
	assert.Equal(t, "a-b-c", normalizeThemeName("a_b c"))
}

func TestFilamentColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#D83B3B"), FilamentColor("Red"))
	assert.Equal(t, lipgloss.Color("#1D1C19"), FilamentColor("Galaxy Black"))
	assert.Equal(t, DefaultTheme.Colors.MutedText, FilamentColor("Unknown"))
}

func TestRenderStatusUnknown(t *testing.T) {
	assert.Equal(t, "plain", RenderStatus("other", "plain"))
}
