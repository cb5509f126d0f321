package widget

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/theme"
)

// Render draws the widget family for dest. DestToday and DestPriority draw
// a single list; any other destination draws both side by side.
func Render(s Snapshot, dest Destination) string {
	switch dest {
	case DestToday:
		return renderList("Today", s.TodayTasks, s, "Nothing due today")
	case DestPriority:
		return renderList("High Priority", s.HighPriorityTasks, s, "No high priority tasks")
	default:
		return lipgloss.JoinHorizontal(lipgloss.Top,
			renderList("Today", s.TodayTasks, s, "Nothing due today"),
			renderList("High Priority", s.HighPriorityTasks, s, "No high priority tasks"),
		)
	}
}

func renderList(title string, tasks []model.Task, s Snapshot, emptyText string) string {
	lines := []string{theme.HeaderStyle.Render(title)}
	if len(tasks) == 0 {
		lines = append(lines, theme.HelpStyle.Render(emptyText))
	}
	for _, t := range tasks {
		lines = append(lines, renderTask(t, s))
	}
	return theme.PanelStyle.Render(strings.Join(lines, "\n"))
}

func renderTask(t model.Task, s Snapshot) string {
	parts := []string{
		theme.PriorityStyle(t.Priority).Render(theme.PriorityMarker(t.Priority)),
		t.Title,
	}
	if t.DueDate != nil {
		parts = append(parts, dueLabel(*t.DueDate, s.GeneratedAt))
	}
	if t.CategoryID != nil {
		if c, ok := s.Categories[*t.CategoryID]; ok {
			parts = append(parts, theme.CategoryStyle(c).Render(c.Name))
		}
	}
	return theme.ListItemStyle.Render(strings.Join(parts, " "))
}

// dueLabel shows the time for tasks due today and the date otherwise.
func dueLabel(due, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	local := due.In(now.Location())

	label := local.Format("Jan 2")
	if StartOfDay(local).Equal(StartOfDay(now)) {
		label = local.Format("15:04")
	}
	if due.Before(now) {
		return theme.OverdueStyle.Render(label)
	}
	return theme.HelpStyle.Render(label)
}
