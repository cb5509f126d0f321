package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/store"
	"github.com/nhle/taskdock/internal/testutil"
)

// recordingReminders captures reminder hook calls.
type recordingReminders struct {
	mu          sync.Mutex
	rescheduled []model.Task
	cancelled   []string
}

func (r *recordingReminders) Reschedule(_ context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rescheduled = append(r.rescheduled, t)
	return nil
}

func (r *recordingReminders) Cancel(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *recordingReminders) calls() (int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rescheduled), append([]string(nil), r.cancelled...)
}

func nextEvent(t *testing.T, sub *bus.Subscription) bus.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return bus.Event{}
}

func addTask(t *testing.T, s store.Store, fields model.TaskFields) string {
	t.Helper()
	id, err := s.AddTask(context.Background(), fields)
	require.NoError(t, err)
	return id
}

func TestAddTaskTimestamps(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id := addTask(t, s, model.TaskFields{Title: "write report"})
	returned := time.Now()

	task, found, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "write report", task.Title)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.IsCompleted)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.CategoryID)
	assert.True(t, task.DateCreated.Equal(task.DateModified))
	assert.False(t, task.DateCreated.After(returned))
}

func TestAddTaskRejectsEmptyTitle(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.AddTask(context.Background(), model.TaskFields{Title: "   "})
	assert.ErrorIs(t, err, store.ErrValidation)

	count, err := s.CountTasks(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPriorityRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)

	id := addTask(t, s, model.TaskFields{Title: "X", Priority: model.PriorityHigh})

	task, found, err := s.GetTask(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "X", task.Title)
	assert.Equal(t, model.PriorityHigh, task.Priority)
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	s := testutil.NewTestStore(t)

	id := addTask(t, s, model.TaskFields{Title: "odd", Priority: "urgent"})

	task, _, err := s.GetTask(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)
}

func TestUpdateTaskModifiedStrictlyIncreases(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s := testutil.NewTestStore(t, store.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	id := addTask(t, s, model.TaskFields{Title: "draft"})
	before, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)

	found, err := s.UpdateTask(ctx, id, model.TaskUpdate{Title: store.Ptr("final")})
	require.NoError(t, err)
	require.True(t, found)

	after, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "final", after.Title)
	assert.True(t, after.DateModified.After(before.DateModified))
	assert.True(t, after.DateCreated.Equal(before.DateCreated))

	found, err = s.ToggleTaskCompletion(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	toggled, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
	assert.True(t, toggled.DateModified.After(after.DateModified))
}

func TestUpdateTaskUnknownID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	found, err := s.UpdateTask(ctx, "missing", model.TaskUpdate{Title: store.Ptr("x")})
	assert.NoError(t, err)
	assert.False(t, found)

	found, err = s.ToggleTaskCompletion(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, found)

	found, err = s.DeleteTask(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateTaskRemoveFlags(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	catID, err := s.AddCategory(ctx, "Work", "#FF0000")
	require.NoError(t, err)

	due := time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC)
	id := addTask(t, s, model.TaskFields{Title: "ship", DueDate: &due, CategoryID: &catID})

	task, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))
	require.NotNil(t, task.CategoryID)
	assert.Equal(t, catID, *task.CategoryID)

	found, err := s.UpdateTask(ctx, id, model.TaskUpdate{RemoveDueDate: true, RemoveCategory: true})
	require.NoError(t, err)
	require.True(t, found)

	task, _, err = s.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.CategoryID)
	assert.Equal(t, "ship", task.Title)
}

func TestUpdateTaskEmptyTitleLeavesTaskUnchanged(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id := addTask(t, s, model.TaskFields{Title: "keep"})

	found, err := s.UpdateTask(ctx, id, model.TaskUpdate{Title: store.Ptr("")})
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.False(t, found)

	task, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "keep", task.Title)
}

func TestCategoryPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("leave unset", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		id := addTask(t, s, model.TaskFields{Title: "orphan", CategoryID: store.Ptr("nope")})
		task, _, err := s.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, task.CategoryID)

		home, err := s.AddCategory(ctx, "Home", "")
		require.NoError(t, err)
		id = addTask(t, s, model.TaskFields{Title: "dishes", CategoryID: &home})

		found, err := s.UpdateTask(ctx, id, model.TaskUpdate{CategoryID: store.Ptr("gone")})
		require.NoError(t, err)
		require.True(t, found)

		task, _, err = s.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, task.CategoryID)
	})

	t.Run("reject", func(t *testing.T) {
		s := testutil.NewTestStore(t, store.WithCategoryPolicy(store.CategoryReject))

		_, err := s.AddTask(ctx, model.TaskFields{Title: "orphan", CategoryID: store.Ptr("nope")})
		assert.ErrorIs(t, err, store.ErrValidation)

		count, err := s.CountTasks(ctx, store.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestDeleteCategoryClearsReferences(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	home, err := s.AddCategory(ctx, "Home", "")
	require.NoError(t, err)
	work, err := s.AddCategory(ctx, "Work", "#00FF00")
	require.NoError(t, err)

	a := addTask(t, s, model.TaskFields{Title: "dishes", CategoryID: &home})
	b := addTask(t, s, model.TaskFields{Title: "laundry", CategoryID: &home})
	c := addTask(t, s, model.TaskFields{Title: "standup", CategoryID: &work})
	d := addTask(t, s, model.TaskFields{Title: "stretch"})

	found, err := s.DeleteCategory(ctx, home)
	require.NoError(t, err)
	require.True(t, found)

	for _, id := range []string{a, b, d} {
		task, ok, err := s.GetTask(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Nil(t, task.CategoryID, id)
	}
	task, _, err := s.GetTask(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, task.CategoryID)
	assert.Equal(t, work, *task.CategoryID)

	count, err := s.CountTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	_, ok, err := s.GetCategory(ctx, home)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCategoryBumpsModifiedTime(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s := testutil.NewTestStore(t, store.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	home, err := s.AddCategory(ctx, "Home", "")
	require.NoError(t, err)
	id := addTask(t, s, model.TaskFields{Title: "dishes", CategoryID: &home})
	before, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)

	found, err := s.DeleteCategory(ctx, home)
	require.NoError(t, err)
	require.True(t, found)

	after, _, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, after.CategoryID)
	assert.True(t, after.DateModified.After(before.DateModified))
}

func TestCategoryColorFallback(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.AddCategory(ctx, "Errands", "red")
	require.NoError(t, err)

	c, found, err := s.GetCategory(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.DefaultCategoryColor, c.ColorHex)

	found, err = s.UpdateCategory(ctx, id, model.CategoryUpdate{ColorHex: store.Ptr("#123abc")})
	require.NoError(t, err)
	require.True(t, found)

	c, _, err = s.GetCategory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#123abc", c.ColorHex)
}

func TestDeleteAllCompleted(t *testing.T) {
	rec := &recordingReminders{}
	s := testutil.NewTestStore(t, store.WithReminders(rec))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		addTask(t, s, model.TaskFields{Title: "done", IsCompleted: true})
	}
	addTask(t, s, model.TaskFields{Title: "open"})
	addTask(t, s, model.TaskFields{Title: "also open"})

	n, err := s.DeleteAllCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.DeleteAllCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	remaining, err := s.QueryTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
	for _, task := range remaining {
		assert.False(t, task.IsCompleted)
	}

	_, cancelled := rec.calls()
	assert.Len(t, cancelled, 3)
}

func TestDeleteAllCompletedKeepsCountOnFailure(t *testing.T) {
	rec := &recordingReminders{}
	s := testutil.NewTestStore(t, store.WithReminders(rec))
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		addTask(t, s, model.TaskFields{Title: "done", IsCompleted: true})
	}
	_, cancelledBefore := rec.calls()

	// Block deleting the last row, which falls in the second chunk.
	raw, err := sqlx.Open("sqlite", "file:"+s.Path()+"?_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	defer raw.Close()
	var last string
	require.NoError(t, raw.Get(&last, "SELECT MAX(id) FROM tasks"))
	_, err = raw.Exec(`
		CREATE TRIGGER block_delete BEFORE DELETE ON tasks
		WHEN OLD.id = '` + last + `'
		BEGIN SELECT RAISE(ABORT, 'blocked'); END`)
	require.NoError(t, err)

	n, err := s.DeleteAllCompleted(ctx)
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Equal(t, 100, n)

	left, err := s.CountTasks(ctx, store.TaskFilter{}.CompletedOnly())
	require.NoError(t, err)
	assert.Equal(t, 50, left)

	_, cancelled := rec.calls()
	assert.Len(t, cancelled, len(cancelledBefore)+100)
}

func TestDeleteAllData(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	catID, err := s.AddCategory(ctx, "Work", "")
	require.NoError(t, err)
	addTask(t, s, model.TaskFields{Title: "a", CategoryID: &catID})
	addTask(t, s, model.TaskFields{Title: "b"})
	_, err = s.AddNote(ctx, "remember the milk")
	require.NoError(t, err)

	n, err := s.DeleteAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	count, err := s.CountTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
	cats, err := s.QueryCategories(ctx, store.CategoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, cats)
	notes, err := s.ListNotes(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestQueryTasksFilterAndSort(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	late := day.Add(18 * time.Hour)
	early := day.Add(9 * time.Hour)
	tomorrow := day.Add(33 * time.Hour)

	addTask(t, s, model.TaskFields{Title: "no date", Priority: model.PriorityHigh})
	addTask(t, s, model.TaskFields{Title: "late", DueDate: &late, Priority: model.PriorityHigh})
	addTask(t, s, model.TaskFields{Title: "early", DueDate: &early, Priority: model.PriorityLow})
	addTask(t, s, model.TaskFields{Title: "tomorrow", DueDate: &tomorrow})
	addTask(t, s, model.TaskFields{Title: "finished", DueDate: &early, IsCompleted: true})

	byDue, err := s.QueryTasks(ctx, store.TaskFilter{}.SortedBy(store.SortDueDate, false))
	require.NoError(t, err)
	require.Len(t, byDue, 5)
	assert.Equal(t, "no date", byDue[4].Title)

	today, err := s.QueryTasks(ctx, store.TaskFilter{}.
		Incomplete().
		DueWithin(day, day.Add(24*time.Hour)).
		SortedBy(store.SortDueDate, false))
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "early", today[0].Title)
	assert.Equal(t, "late", today[1].Title)

	high, err := s.QueryTasks(ctx, store.TaskFilter{}.
		Incomplete().
		WithPriority(model.PriorityHigh).
		SortedBy(store.SortDueDate, false))
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, "late", high[0].Title)
	assert.Equal(t, "no date", high[1].Title)

	limited, err := s.QueryTasks(ctx, store.TaskFilter{}.Incomplete().Take(1))
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	matches, err := s.QueryTasks(ctx, store.TaskFilter{Query: store.Ptr("tomo")})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tomorrow", matches[0].Title)

	done, err := s.CountTasks(ctx, store.TaskFilter{}.CompletedOnly())
	require.NoError(t, err)
	assert.Equal(t, 1, done)
}

func TestMutationsPublish(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tasks := s.Bus().Subscribe(bus.TasksChanged)
	defer tasks.Close()
	cats := s.Bus().Subscribe(bus.CategoriesChanged)
	defer cats.Close()
	data := s.Bus().Subscribe(bus.DataChanged)
	defer data.Close()

	id := addTask(t, s, model.TaskFields{Title: "observe me"})
	ev := nextEvent(t, tasks)
	assert.Equal(t, id, ev.Payload.ID)
	assert.Equal(t, bus.KindCreated, ev.Payload.Kind)
	require.NotNil(t, ev.Payload.IsCompleted)
	assert.False(t, *ev.Payload.IsCompleted)
	assert.Equal(t, bus.DataChanged, nextEvent(t, data).Topic)

	_, err := s.ToggleTaskCompletion(ctx, id)
	require.NoError(t, err)
	ev = nextEvent(t, tasks)
	assert.Equal(t, bus.KindUpdated, ev.Payload.Kind)
	require.NotNil(t, ev.Payload.IsCompleted)
	assert.True(t, *ev.Payload.IsCompleted)
	nextEvent(t, data)

	catID, err := s.AddCategory(ctx, "Inbox", "")
	require.NoError(t, err)
	ev = nextEvent(t, cats)
	assert.Equal(t, catID, ev.Payload.ID)
	nextEvent(t, data)

	_, err = s.DeleteTask(ctx, id)
	require.NoError(t, err)
	ev = nextEvent(t, tasks)
	assert.Equal(t, bus.KindDeleted, ev.Payload.Kind)
	assert.Equal(t, id, ev.Payload.ID)
	nextEvent(t, data)

	// Notes only touch the generic topic.
	_, err = s.AddNote(ctx, "scratch")
	require.NoError(t, err)
	assert.Equal(t, bus.DataChanged, nextEvent(t, data).Topic)
	select {
	case ev := <-tasks.C():
		t.Fatalf("unexpected task event %+v", ev)
	default:
	}
}

func TestFailedWritePublishesNothing(t *testing.T) {
	s := testutil.NewTestStore(t)

	data := s.Bus().Subscribe(bus.DataChanged)
	defer data.Close()

	_, err := s.AddTask(context.Background(), model.TaskFields{Title: ""})
	require.Error(t, err)

	select {
	case ev := <-data.C():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReminderHookCalls(t *testing.T) {
	rec := &recordingReminders{}
	s := testutil.NewTestStore(t, store.WithReminders(rec))
	ctx := context.Background()

	due := time.Now().Add(2 * time.Hour)
	id := addTask(t, s, model.TaskFields{Title: "call", DueDate: &due, ReminderType: model.ReminderHourBefore})
	rescheduled, _ := rec.calls()
	assert.Equal(t, 1, rescheduled)

	// Priority does not feed the fire time.
	_, err := s.UpdateTask(ctx, id, model.TaskUpdate{Priority: store.Ptr(model.PriorityHigh)})
	require.NoError(t, err)
	rescheduled, _ = rec.calls()
	assert.Equal(t, 1, rescheduled)

	_, err = s.UpdateTask(ctx, id, model.TaskUpdate{RemoveDueDate: true})
	require.NoError(t, err)
	rescheduled, _ = rec.calls()
	assert.Equal(t, 2, rescheduled)

	_, err = s.DeleteTask(ctx, id)
	require.NoError(t, err)
	_, cancelled := rec.calls()
	assert.Equal(t, []string{id}, cancelled)
}

func TestMigrationsIdempotentOnReopen(t *testing.T) {
	path := testutil.StorePath(t)
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	id, err := s.AddTask(ctx, model.TaskFields{Title: "persist"})
	require.NoError(t, err)
	caps := s.Capabilities()
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, caps, s.Capabilities())
	assert.True(t, caps.Reminders)
	assert.True(t, caps.NotificationRegistry)

	task, found, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "persist", task.Title)
}

func TestOpenFallsBackToLocal(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	local := t.TempDir()

	s, err := store.Open(model.StoreConfig{SharedRoot: blocker, LocalDir: local})
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Shared())
	assert.Equal(t, model.LocalStorePath(local), s.Path())
}

func TestOpenShared(t *testing.T) {
	root := t.TempDir()

	s, err := store.Open(model.StoreConfig{SharedRoot: root, LocalDir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Shared())
	assert.Equal(t, model.SharedStorePath(root), s.Path())
}

func TestReadOnlyHandle(t *testing.T) {
	path := testutil.StorePath(t)
	ctx := context.Background()

	writer, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer writer.Close()
	id, err := writer.AddTask(ctx, model.TaskFields{Title: "visible"})
	require.NoError(t, err)

	reader, err := store.OpenReadOnly(path)
	require.NoError(t, err)
	defer reader.Close()

	assert.True(t, reader.ReadOnly())
	task, found, err := reader.GetTask(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "visible", task.Title)

	_, err = reader.AddTask(ctx, model.TaskFields{Title: "nope"})
	assert.ErrorIs(t, err, store.ErrReadOnly)
	_, err = reader.DeleteAllCompleted(ctx)
	assert.ErrorIs(t, err, store.ErrReadOnly)
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	_, err := store.OpenReadOnly(filepath.Join(t.TempDir(), "absent.sqlite"))
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestNotes(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first, err := s.AddNote(ctx, "first thought")
	require.NoError(t, err)
	second, err := s.AddNote(ctx, "second thought")
	require.NoError(t, err)

	found, err := s.UpdateNote(ctx, first, "first thought, revised")
	require.NoError(t, err)
	require.True(t, found)

	notes, err := s.ListNotes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first, notes[0].ID)
	assert.Equal(t, "first thought, revised", notes[0].Content)

	found, err = s.DeleteNote(ctx, second)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.UpdateNote(ctx, second, "gone")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.AddNote(ctx, "")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestDeleteRecord(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id := addTask(t, s, model.TaskFields{Title: "gone soon"})
	catID, err := s.AddCategory(ctx, "Temp", "")
	require.NoError(t, err)

	found, err := s.DeleteRecord(ctx, model.EntityTask, id)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.DeleteRecord(ctx, model.EntityCategory, catID)
	require.NoError(t, err)
	assert.True(t, found)

	_, err = s.DeleteRecord(ctx, model.EntityKind("note"), "x")
	assert.ErrorIs(t, err, store.ErrValidation)
}
