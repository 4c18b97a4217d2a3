package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/toolchange/tui/theme"
)

// Options configures a styled table.
type Options struct {
	// Highlight is the data row rendered with the highlight style; -1 for none.
	Highlight int
	// MuteBefore fades data rows above Highlight.
	MuteBefore bool
	Theme      *theme.Theme
}

// DefaultOptions returns options with no highlighted row.
func DefaultOptions() Options {
	return Options{
		Highlight: -1,
		Theme:     theme.DefaultTheme,
	}
}

// NewStyledTable creates a lipgloss table with the default styling.
func NewStyledTable(opts Options) *ltable.Table {
	t := opts.Theme
	if t == nil {
		t = theme.DefaultTheme
	}

	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == ltable.HeaderRow:
				return base.Inherit(t.Bold).Foreground(t.Colors.Cyan)
			case row == opts.Highlight:
				return base.Inherit(t.Highlight)
			case opts.MuteBefore && opts.Highlight >= 0 && row < opts.Highlight:
				return base.Inherit(t.Muted)
			}
			return base
		})
}
