package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/testutil"
)

func TestNotificationRegistry(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	soon := model.Notification{ID: "task-reminder-a", TaskID: "a", Title: "A", FireAt: now.Add(-time.Minute)}
	later := model.Notification{ID: "task-reminder-b", TaskID: "b", Title: "B", FireAt: now.Add(time.Hour)}
	require.NoError(t, s.UpsertNotification(ctx, soon))
	require.NoError(t, s.UpsertNotification(ctx, later))

	// Re-registering the same ID replaces the row.
	soon.Body = "due now"
	require.NoError(t, s.UpsertNotification(ctx, soon))

	pending, err := s.PendingNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "task-reminder-a", pending[0].ID)
	assert.Equal(t, "due now", pending[0].Body)

	due, err := s.DueNotifications(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "a", due[0].TaskID)
	assert.True(t, due[0].FireAt.Equal(soon.FireAt))

	require.NoError(t, s.MarkNotificationDelivered(ctx, soon.ID, soon.FireAt))
	due, err = s.DueNotifications(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)

	got, found, err := s.GetNotification(ctx, soon.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Delivered)

	removed, err := s.RemoveNotification(ctx, later.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveNotification(ctx, later.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, found, err = s.GetNotification(ctx, later.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNotificationAuthorization(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	granted, decided, err := s.NotificationAuthorization(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.False(t, decided)

	require.NoError(t, s.SetNotificationAuthorization(ctx, true))
	granted, decided, err = s.NotificationAuthorization(ctx)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.True(t, decided)

	require.NoError(t, s.SetNotificationAuthorization(ctx, false))
	granted, decided, err = s.NotificationAuthorization(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.True(t, decided)
}

func TestMarkDeliveredSkipsReplacedRegistration(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	n := model.Notification{ID: "task-reminder-a", TaskID: "a", Title: "A", FireAt: now.Add(-time.Minute)}
	require.NoError(t, s.UpsertNotification(ctx, n))

	due, err := s.DueNotifications(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)

	// Rescheduled by another process before the delivery was recorded.
	moved := n
	moved.FireAt = now.Add(time.Hour)
	require.NoError(t, s.UpsertNotification(ctx, moved))

	require.NoError(t, s.MarkNotificationDelivered(ctx, due[0].ID, due[0].FireAt))

	got, found, err := s.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, got.Delivered)
	assert.True(t, got.FireAt.Equal(moved.FireAt))
}
