package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Nerd Font Icons (Private Constants)
const (
	nerdIconSuccess = "󰄬" // md-check (U+F012C)
	nerdIconError   = "" // cod-error (U+EA87)
	nerdIconWarning = "" // fa-warning (U+F071)
	nerdIconPending = "󰦖" // md-progress_clock (U+F0996)
	nerdIconArrow   = "󰁔" // md-arrow_right (U+F0054)
	nerdIconBullet  = "" // oct-dot_fill (U+F444)
	nerdIconSpool   = "󰝥" // md-circle (U+F0765)
)

// ASCII Fallback Icons (Private Constants)
const (
	asciiIconSuccess = "[x]"
	asciiIconError   = "[!]"
	asciiIconWarning = "[!]"
	asciiIconPending = "[ ]"
	asciiIconArrow   = ">"
	asciiIconBullet  = "*"
	asciiIconSpool   = "#"
)

// Public Icon Variables
var (
	IconSuccess string
	IconError   string
	IconWarning string
	IconPending string
	IconArrow   string
	IconBullet  string
	IconSpool   string
)

// init picks the icon set. Printer consoles rarely carry a Nerd Font, so
// ASCII is the default and TOOLCHANGE_ICONS=nerd or tui.icons opts in.
func init() {
	mode := os.Getenv("TOOLCHANGE_ICONS")
	if mode == "" {
		mode = loadTUIConfig().Icons
	}

	if mode == "nerd" {
		IconSuccess = nerdIconSuccess
		IconError = nerdIconError
		IconWarning = nerdIconWarning
		IconPending = nerdIconPending
		IconArrow = nerdIconArrow
		IconBullet = nerdIconBullet
		IconSpool = nerdIconSpool
	} else {
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconPending = asciiIconPending
		IconArrow = asciiIconArrow
		IconBullet = asciiIconBullet
		IconSpool = asciiIconSpool
	}
}

// filamentColors maps common filament color names to display colors.
var filamentColors = map[string]string{
	"black":   "#1D1C19",
	"blue":    "#3B6FD8",
	"brown":   "#8B5A2B",
	"clear":   "#DCE6EA",
	"natural": "#E8DFC8",
	"gold":    "#D4AF37",
	"gray":    "#8A8A8A",
	"grey":    "#8A8A8A",
	"green":   "#3FA34D",
	"orange":  "#FF8C1A",
	"pink":    "#E87FB0",
	"purple":  "#8E5CC2",
	"red":     "#D83B3B",
	"silver":  "#C0C0C0",
	"white":   "#F4F4F4",
	"yellow":  "#F2D338",
}

// FilamentColor returns a terminal color for a filament color label.
// Multi-word labels such as "Galaxy Black" match on any known word.
// Unknown labels use the muted text color.
func FilamentColor(label string) lipgloss.TerminalColor {
	key := strings.ToLower(strings.TrimSpace(label))
	if hex, ok := filamentColors[key]; ok {
		return lipgloss.Color(hex)
	}
	for _, word := range strings.Fields(key) {
		if hex, ok := filamentColors[word]; ok {
			return lipgloss.Color(hex)
		}
	}
	return DefaultTheme.Colors.MutedText
}

// Swatch renders the spool icon in the filament's color.
func Swatch(label string) string {
	return lipgloss.NewStyle().Foreground(FilamentColor(label)).Render(IconSpool)
}
