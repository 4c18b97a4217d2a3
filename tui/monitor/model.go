// Package monitor is a read-only terminal view of the tracked tool changes
// that follows the state file as the printer advances it.
package monitor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/toolchange/state"
	"github.com/grovetools/toolchange/tracker"
	"github.com/grovetools/toolchange/tui/theme"
)

// Loader reads the current tracking state.
type Loader interface {
	Load() (*state.TrackingState, error)
	Path() string
}

// Model is the bubbletea model of the monitor.
type Model struct {
	loader  Loader
	changes <-chan struct{}

	state *state.TrackingState
	err   error

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	theme    *theme.Theme
	width    int
	height   int
	ready    bool
}

// Messages

// stateLoadedMsg carries the result of reading the state file.
type stateLoadedMsg struct {
	state *state.TrackingState
	err   error
}

// stateChangedMsg indicates the watcher saw the state file change.
type stateChangedMsg struct{}

// New creates a monitor. changes may be nil, in which case the view only
// reloads on demand.
func New(loader Loader, changes <-chan struct{}) Model {
	return Model{
		loader:  loader,
		changes: changes,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		theme:   theme.DefaultTheme,
	}
}

// Init loads the state and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		st, err := m.loader.Load()
		return stateLoadedMsg{state: st, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.listHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.listHeight()
		}
		m.refreshContent(false)

	case stateLoadedMsg:
		m.state, m.err = msg.state, msg.err
		m.refreshContent(true)

	case stateChangedMsg:
		cmds = append(cmds, m.load(), m.waitForChange())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			if m.ready {
				m.viewport.Height = m.listHeight()
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Current):
			m.scrollToCurrent()
			return m, nil
		case key.Matches(msg, m.keys.GotoTop):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.GotoEnd):
			m.viewport.GotoBottom()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.viewport.SetYOffset(m.viewport.YOffset - 1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.viewport.SetYOffset(m.viewport.YOffset + 1)
			return m, nil
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// headerHeight is the number of lines above the change list.
const headerHeight = 4

func (m Model) listHeight() int {
	h := m.height - headerHeight - lipgloss.Height(m.help.View(m.keys)) - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) refreshContent(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderList())
	if follow {
		m.scrollToCurrent()
	}
}

// scrollToCurrent centres the next pending change in the viewport.
func (m *Model) scrollToCurrent() {
	if m.state == nil {
		return
	}
	offset := m.state.CurrentChange - m.viewport.Height/2
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

// View renders the monitor.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Highlight.Render("Tool changes")
	source := t.Muted.Render(m.loader.Path())
	if m.state != nil && m.state.SourceFile != "" {
		source = t.Muted.Render(filepath.Base(m.state.SourceFile))
	}

	var status string
	switch {
	case m.err != nil:
		status = t.Error.Render(theme.IconError + " " + m.err.Error())
	case m.state == nil:
		status = t.Muted.Render("Reading state...")
	default:
		report := tracker.NewReport(m.state)
		if report.Completed {
			status = t.Success.Render(theme.IconSuccess + " " + report.Human())
		} else {
			status = t.Info.Render(report.Human())
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+source,
		status,
		m.renderProgress(),
		"",
	)
}

// renderProgress draws a bar of completed changes.
func (m Model) renderProgress() string {
	if m.state == nil || m.state.TotalChanges == 0 {
		return ""
	}
	width := m.width - 12
	if width < 10 {
		width = 10
	}
	done := width * m.state.CurrentChange / m.state.TotalChanges
	bar := lipgloss.NewStyle().Foreground(m.theme.Colors.Green).Render(strings.Repeat("█", done)) +
		m.theme.Muted.Render(strings.Repeat("░", width-done))
	return fmt.Sprintf("%s %d/%d", bar, m.state.CurrentChange, m.state.TotalChanges)
}

func (m Model) renderList() string {
	if m.state == nil {
		return ""
	}
	if len(m.state.Changes) == 0 {
		return m.theme.Muted.Render("No tool changes in this print.")
	}

	lines := make([]string, 0, len(m.state.Changes))
	for i, change := range m.state.Changes {
		lines = append(lines, m.renderRow(i, change))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int, change state.ToolChangeEvent) string {
	t := m.theme
	icon := theme.IconPending
	style := t.Normal
	switch {
	case i < m.state.CurrentChange:
		icon = theme.IconSuccess
		style = t.Muted
	case i == m.state.CurrentChange:
		icon = theme.IconArrow
		style = t.Bold
	}

	row := fmt.Sprintf("%3d  T%-2d %-18s line %-8d %s",
		i+1, change.ToolNumber, change.Color, change.Line,
		strings.TrimSpace(change.Brand+" "+change.Material))
	return fmt.Sprintf("%-3s %s %s", icon, theme.Swatch(change.Color), style.Render(row))
}
