// Package widgetview is the interactive terminal view over a widget timeline.
package widgetview

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskdock/internal/keys"
	"github.com/nhle/taskdock/internal/theme"
	"github.com/nhle/taskdock/internal/widget"
)

// SnapshotMsg carries a refreshed snapshot from the timeline.
type SnapshotMsg widget.Snapshot

// Model renders the latest snapshot and lets the user switch families.
type Model struct {
	timeline *widget.Timeline
	keys     *keys.KeyMap
	help     help.Model

	dest   widget.Destination
	snap   widget.Snapshot
	loaded bool
	status string
}

// New creates a view over tl starting on dest. The timeline must already be
// started.
func New(tl *widget.Timeline, dest widget.Destination) Model {
	h := help.New()
	h.Styles.ShortKey = theme.HelpStyle
	h.Styles.ShortDesc = theme.HelpStyle
	h.Styles.FullKey = theme.HelpStyle
	h.Styles.FullDesc = theme.HelpStyle

	return Model{
		timeline: tl,
		keys:     keys.DefaultKeyMap(),
		help:     h,
		dest:     dest,
	}
}

// Destination returns the family currently shown.
func (m Model) Destination() widget.Destination { return m.dest }

// Snapshot returns the snapshot currently shown.
func (m Model) Snapshot() widget.Snapshot { return m.snap }

// Init waits for the first snapshot.
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.timeline)
}

// waitForSnapshot blocks until the timeline publishes a snapshot.
func waitForSnapshot(tl *widget.Timeline) tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(<-tl.Updates())
	}
}

// Update handles timeline and keyboard messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = widget.Snapshot(msg)
		m.loaded = true
		return m, waitForSnapshot(m.timeline)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Today):
			m.dest = widget.DestToday
		case key.Matches(msg, m.keys.Priority):
			m.dest = widget.DestPriority
		case key.Matches(msg, m.keys.All):
			m.dest = widget.DestNewTask
		case key.Matches(msg, m.keys.NewTask):
			m.status = "Open " + widget.DestNewTask.URL() + " to add a task"
		case key.Matches(msg, m.keys.Refresh):
			m.timeline.Trigger()
			m.status = "Refreshing..."
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// View renders the current family, a status line and help.
func (m Model) View() string {
	if !m.loaded {
		return theme.HelpStyle.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(widget.Render(m.snap, m.dest))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(theme.HelpStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
