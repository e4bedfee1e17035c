package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/store"
	"github.com/nhle/task-reminders/internal/testutil"
)

func TestTakeDueNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	for _, n := range []model.ScheduledNotification{
		{ID: "later", Title: "later", Data: "{}", FireAt: now.Add(time.Minute)},
		{ID: "second", Title: "second", Data: "{}", FireAt: now},
		{ID: "first", Title: "first", Data: `{"type":"reminder"}`, FireAt: now.Add(-time.Hour), Sound: true},
	} {
		require.NoError(t, s.InsertNotification(ctx, n))
	}

	due, err := s.TakeDueNotifications(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "first", due[0].ID)
	assert.True(t, due[0].Sound)
	assert.Equal(t, `{"type":"reminder"}`, due[0].Data)
	assert.Equal(t, "second", due[1].ID)

	again, err := s.TakeDueNotifications(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again)

	rest, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "later", rest[0].ID)
}

func TestDeleteNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertNotification(ctx, model.ScheduledNotification{
		ID: "a", Title: "a", Data: "{}", FireAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, s.DeleteNotification(ctx, "a"))
	assert.ErrorIs(t, s.DeleteNotification(ctx, "a"), store.ErrNotFound)

	require.NoError(t, s.InsertNotification(ctx, model.ScheduledNotification{
		ID: "b", Title: "b", Data: "{}", FireAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, s.DeleteAllNotifications(ctx))
	all, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpsertChannel(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ch := model.NotificationChannel{ID: "streaks", Name: "Streaks", Importance: "default", Sound: true}
	require.NoError(t, s.UpsertChannel(ctx, ch))
	ch.Importance = "high"
	require.NoError(t, s.UpsertChannel(ctx, ch))

	got, err := s.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "high", got[0].Importance)
	assert.True(t, got[0].Sound)
}

func TestSettings(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetSetting(ctx, "permission")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetSetting(ctx, "permission", "denied"))
	require.NoError(t, s.SetSetting(ctx, "permission", "granted"))
	v, err := s.GetSetting(ctx, "permission")
	require.NoError(t, err)
	assert.Equal(t, "granted", v)
}
