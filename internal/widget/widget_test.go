package widget_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/reminder"
	"github.com/nhle/taskdock/internal/testutil"
	"github.com/nhle/taskdock/internal/widget"
)

var zone = time.FixedZone("UTC+2", 2*60*60)

func at(day, hour int) time.Time {
	return time.Date(2026, 9, day, hour, 0, 0, 0, zone)
}

func titles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestSnapshotTodayAndPriority(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	add := func(title string, due *time.Time, p model.Priority, done bool) {
		_, err := s.AddTask(ctx, model.TaskFields{Title: title, DueDate: due, Priority: p, IsCompleted: done})
		require.NoError(t, err)
	}
	evening, morning, tomorrow, yesterday := at(10, 18), at(10, 9), at(11, 9), at(9, 23)
	add("evening", &evening, model.PriorityHigh, false)
	add("morning", &morning, model.PriorityMedium, false)
	add("tomorrow", &tomorrow, model.PriorityHigh, false)
	add("yesterday", &yesterday, model.PriorityLow, false)
	add("finished", &morning, model.PriorityHigh, true)
	add("someday", nil, model.PriorityHigh, false)

	p := widget.NewProvider(s.Path(), 5)
	snap := p.Snapshot(ctx, at(10, 12))

	assert.Equal(t, []string{"morning", "evening"}, titles(snap.TodayTasks))
	assert.Equal(t, []string{"evening", "tomorrow", "someday"}, titles(snap.HighPriorityTasks))
	assert.False(t, snap.Empty())
}

func TestSnapshotRespectsLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		due := at(10, 8+i)
		_, err := s.AddTask(ctx, model.TaskFields{
			Title:    fmt.Sprintf("task %d", i),
			DueDate:  &due,
			Priority: model.PriorityHigh,
		})
		require.NoError(t, err)
	}

	snap := widget.NewProvider(s.Path(), 3).Snapshot(ctx, at(10, 7))
	assert.Equal(t, []string{"task 0", "task 1", "task 2"}, titles(snap.TodayTasks))
	assert.Len(t, snap.HighPriorityTasks, 3)
}

func TestSnapshotCategories(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	catID, err := s.AddCategory(ctx, "Work", "#FF9500")
	require.NoError(t, err)
	due := at(10, 15)
	_, err = s.AddTask(ctx, model.TaskFields{Title: "review", DueDate: &due, CategoryID: &catID})
	require.NoError(t, err)

	snap := widget.NewProvider(s.Path(), 5).Snapshot(ctx, at(10, 12))
	require.Contains(t, snap.Categories, catID)
	assert.Equal(t, "Work", snap.Categories[catID].Name)
}

func TestSnapshotUnavailableStoreIsEmpty(t *testing.T) {
	p := widget.NewProvider(filepath.Join(t.TempDir(), "missing.sqlite"), 5)

	snap := p.Snapshot(context.Background(), at(10, 12))
	assert.True(t, snap.Empty())
	assert.Equal(t, at(10, 12), snap.GeneratedAt)
}

func TestProviderLimitClamp(t *testing.T) {
	assert.Equal(t, widget.DefaultLimit, widget.NewProvider("x", 0).Limit())
	assert.Equal(t, widget.DefaultLimit, widget.NewProvider("x", 11).Limit())
	assert.Equal(t, 1, widget.NewProvider("x", 1).Limit())
	assert.Equal(t, widget.MaxLimit, widget.NewProvider("x", 10).Limit())
}

func TestStartOfDay(t *testing.T) {
	assert.Equal(t, at(10, 0), widget.StartOfDay(time.Date(2026, 9, 10, 23, 59, 59, 0, zone)))
}

func TestNextRefresh(t *testing.T) {
	tl := widget.NewTimeline(widget.NewProvider("x", 5), time.Hour, nil)

	assert.Equal(t, at(10, 11), tl.NextRefresh(at(10, 10)))

	lateEvening := time.Date(2026, 9, 10, 23, 30, 0, 0, zone)
	assert.Equal(t, at(11, 0), tl.NextRefresh(lateEvening))
}

func TestTimelineRefreshesOnTrigger(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	clock := reminder.NewFakeClock(at(10, 12))

	tl := widget.NewTimeline(widget.NewProvider(s.Path(), 5), time.Hour, clock)
	tl.Start()
	defer tl.Stop()

	select {
	case snap := <-tl.Updates():
		assert.True(t, snap.Empty())
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	due := at(10, 16)
	_, err := s.AddTask(ctx, model.TaskFields{Title: "pick up kids", DueDate: &due})
	require.NoError(t, err)
	tl.Trigger()

	select {
	case snap := <-tl.Updates():
		assert.Equal(t, []string{"pick up kids"}, titles(snap.TodayTasks))
		assert.Equal(t, snap.TodayTasks, tl.Latest().TodayTasks)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not refresh")
	}
}

func TestResolveDestination(t *testing.T) {
	tests := []struct {
		raw     string
		want    widget.Destination
		wantErr bool
	}{
		{raw: "taskdock://today", want: widget.DestToday},
		{raw: "taskdock://priority", want: widget.DestPriority},
		{raw: "taskdock://newTask", want: widget.DestNewTask},
		{raw: "taskdock:today", want: widget.DestToday},
		{raw: "https://today", wantErr: true},
		{raw: "taskdock://settings", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := widget.ResolveDestination(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, must(widget.ResolveDestination(got.URL())))
		})
	}
}

func must(d widget.Destination, err error) widget.Destination {
	if err != nil {
		panic(err)
	}
	return d
}

func TestRender(t *testing.T) {
	due := at(10, 9)
	snap := widget.Snapshot{
		GeneratedAt: at(10, 12),
		TodayTasks:  []model.Task{{ID: "1", Title: "standup", DueDate: &due, Priority: model.PriorityMedium}},
	}

	today := widget.Render(snap, widget.DestToday)
	assert.Contains(t, today, "Today")
	assert.Contains(t, today, "standup")
	assert.Contains(t, today, "09:00")

	priority := widget.Render(snap, widget.DestPriority)
	assert.Contains(t, priority, "No high priority tasks")

	both := widget.Render(snap, widget.DestNewTask)
	assert.Contains(t, both, "standup")
	assert.Contains(t, both, "High Priority")
}
