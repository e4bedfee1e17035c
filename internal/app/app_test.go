package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminders/internal/app"
	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/notify/notifytest"
	"github.com/nhle/task-reminders/internal/store"
	"github.com/nhle/task-reminders/internal/testutil"
)

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func testConfig() *model.AppConfig {
	return &model.AppConfig{
		Reminders: model.RemindersConfig{DefaultLead: time.Hour},
		Summary:   model.SummaryConfig{DailyEnabled: true, DailyTime: "20:00"},
	}
}

func newApp(t *testing.T, p *notifytest.Platform) (*app.App, store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t)
	svc := notify.New(p, notify.WithClock(clock))
	return app.New(s, svc, testConfig(), app.WithClock(clock)), s
}

var errDiskFull = errors.New("disk full")

// flakyStore fails writes on demand.
type flakyStore struct {
	store.Store
	failUpdates bool
	failDeletes bool
}

func (s *flakyStore) UpdateTodo(ctx context.Context, todo model.Todo) error {
	if s.failUpdates {
		return errDiskFull
	}
	return s.Store.UpdateTodo(ctx, todo)
}

func (s *flakyStore) DeleteTodo(ctx context.Context, id string) error {
	if s.failDeletes {
		return errDiskFull
	}
	return s.Store.DeleteTodo(ctx, id)
}

func newFlakyApp(t *testing.T, p *notifytest.Platform) (*app.App, *flakyStore) {
	t.Helper()
	s := &flakyStore{Store: testutil.NewTestStore(t)}
	svc := notify.New(p, notify.WithClock(clock))
	return app.New(s, svc, testConfig(), app.WithClock(clock)), s
}

func ptr(t time.Time) *time.Time { return &t }

func requirePendingAt(t *testing.T, p *notifytest.Platform, todo *model.Todo, at time.Time) {
	t.Helper()
	require.NotEmpty(t, todo.Reminder.NotificationID)
	n, ok := p.Get(notify.Handle(todo.Reminder.NotificationID))
	require.True(t, ok)
	assert.True(t, at.Equal(n.Trigger.Time()), "want %s got %s", at, n.Trigger.Time())
}

func TestAddTodo_SchedulesRelativeReminder(t *testing.T) {
	p := notifytest.Granted()
	a, s := newApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", DueDate: ptr(testNow.Add(5 * time.Hour)), Remind: true})
	require.NoError(t, err)
	requirePendingAt(t, p, todo, testNow.Add(4*time.Hour))

	stored, err := s.GetTodoByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.Reminder.NotificationID, stored.Reminder.NotificationID)
	assert.True(t, stored.Reminder.Relative)
}

func TestAddTodo_WithoutReminder(t *testing.T) {
	p := notifytest.Granted()
	a, _ := newApp(t, p)

	todo, err := a.AddTodo(context.Background(), app.NewTodo{Title: "quiet"})
	require.NoError(t, err)
	assert.False(t, todo.Reminder.Enabled)
	assert.Zero(t, p.Count())
}

func TestSetDueDate_MovesRelativeReminder(t *testing.T) {
	p := notifytest.Granted()
	a, s := newApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", DueDate: ptr(testNow.Add(5 * time.Hour)), Remind: true})
	require.NoError(t, err)
	old := notify.Handle(todo.Reminder.NotificationID)

	todo, err = a.SetDueDate(ctx, todo.ID, ptr(testNow.Add(10*time.Hour)))
	require.NoError(t, err)
	requirePendingAt(t, p, todo, testNow.Add(9*time.Hour))
	assert.Contains(t, p.Cancelled, old)
	assert.Equal(t, 1, p.Count())

	stored, err := s.GetTodoByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.Reminder.NotificationID, stored.Reminder.NotificationID)
}

func TestSetReminder_ExplicitTimeIgnoresDueDate(t *testing.T) {
	p := notifytest.Granted()
	a, _ := newApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", DueDate: ptr(testNow.Add(5 * time.Hour))})
	require.NoError(t, err)

	at := testNow.Add(30 * time.Minute)
	todo, err = a.SetReminder(ctx, todo.ID, &at)
	require.NoError(t, err)
	requirePendingAt(t, p, todo, at)

	todo, err = a.SetDueDate(ctx, todo.ID, ptr(testNow.Add(48*time.Hour)))
	require.NoError(t, err)
	requirePendingAt(t, p, todo, at)
}

func TestComplete_CancelsReminder(t *testing.T) {
	p := notifytest.Granted()
	a, _ := newApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", Remind: true})
	require.NoError(t, err)
	h := notify.Handle(todo.Reminder.NotificationID)

	todo, err = a.Complete(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TodoStatusComplete, todo.Status)
	assert.False(t, todo.Reminder.Enabled)
	assert.Empty(t, todo.Reminder.NotificationID)
	assert.Contains(t, p.Cancelled, h)
	assert.Zero(t, p.Count())

	_, err = a.SetReminder(ctx, todo.ID, nil)
	assert.Error(t, err)
}

func TestDelete_CancelsReminder(t *testing.T) {
	p := notifytest.Granted()
	a, s := newApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", Remind: true})
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, todo.ID))
	assert.Zero(t, p.Count())
	_, err = s.GetTodoByID(ctx, todo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResync_RestoresDegradedReminders(t *testing.T) {
	p := notifytest.New()
	p.PromptWith = notify.PermissionDenied
	a, _ := newApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", DueDate: ptr(testNow.Add(3 * time.Hour)), Remind: true})
	require.NoError(t, err)
	assert.True(t, todo.Reminder.Enabled)
	assert.Empty(t, todo.Reminder.NotificationID)

	// Granted later from system settings.
	p.Status = notify.PermissionGranted

	n, err := a.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	todos, err := a.Todos(ctx, store.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, todos, 1)
	requirePendingAt(t, p, &todos[0], testNow.Add(2*time.Hour))

	// Nothing left to restore.
	n, err = a.Resync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReset_ClearsHandles(t *testing.T) {
	p := notifytest.Granted()
	a, _ := newApp(t, p)
	ctx := context.Background()

	_, err := a.AddTodo(ctx, app.NewTodo{Title: "a", Remind: true})
	require.NoError(t, err)
	_, err = a.AddTodo(ctx, app.NewTodo{Title: "b", Remind: true})
	require.NoError(t, err)

	require.NoError(t, a.Reset(ctx))
	assert.Zero(t, p.Count())

	todos, err := a.Todos(ctx, store.TodoFilter{})
	require.NoError(t, err)
	for _, todo := range todos {
		assert.True(t, todo.Reminder.Enabled)
		assert.Empty(t, todo.Reminder.NotificationID)
	}

	n, err := a.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, p.Count())
}

func TestSetReminder_FailedSaveLeavesNoOrphan(t *testing.T) {
	p := notifytest.Granted()
	a, s := newFlakyApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", Remind: true, RemindAt: ptr(testNow.Add(2 * time.Hour))})
	require.NoError(t, err)
	require.Equal(t, 1, p.Count())

	s.failUpdates = true
	_, err = a.SetReminder(ctx, todo.ID, ptr(testNow.Add(3*time.Hour)))
	require.ErrorIs(t, err, errDiskFull)
	assert.Zero(t, p.Count())

	s.failUpdates = false
	updated, err := a.SetReminder(ctx, todo.ID, ptr(testNow.Add(5*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Count())
	requirePendingAt(t, p, updated, testNow.Add(5*time.Hour))
}

func TestAddTodo_FailedSaveCancelsReminder(t *testing.T) {
	p := notifytest.Granted()
	a, s := newFlakyApp(t, p)
	s.failUpdates = true

	_, err := a.AddTodo(context.Background(), app.NewTodo{Title: "ship", Remind: true})
	require.ErrorIs(t, err, errDiskFull)
	assert.Zero(t, p.Count())
}

func TestDelete_FailedDeleteKeepsReminder(t *testing.T) {
	p := notifytest.Granted()
	a, s := newFlakyApp(t, p)
	ctx := context.Background()

	todo, err := a.AddTodo(ctx, app.NewTodo{Title: "ship", Remind: true})
	require.NoError(t, err)

	s.failDeletes = true
	require.ErrorIs(t, a.Delete(ctx, todo.ID), errDiskFull)
	requirePendingAt(t, p, todo, testNow.Add(time.Hour))

	s.failDeletes = false
	require.NoError(t, a.Delete(ctx, todo.ID))
	assert.Zero(t, p.Count())
}
