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

func TestCreateTodo_RoundTripsReminder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, 3, 11, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	at := due.Add(-time.Hour)
	todo := &model.Todo{
		Title:    "write report",
		Category: "work",
		DueDate:  &due,
		Reminder: model.Reminder{
			Enabled:        true,
			At:             &at,
			Relative:       true,
			NotificationID: "n-1",
		},
	}
	require.NoError(t, s.CreateTodo(ctx, todo))
	require.NotEmpty(t, todo.ID)
	assert.Equal(t, model.TodoStatusOpen, todo.Status)

	got, err := s.GetTodoByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, "work", got.Category)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, got.Reminder.Enabled)
	assert.True(t, got.Reminder.Relative)
	require.NotNil(t, got.Reminder.At)
	assert.True(t, at.Equal(*got.Reminder.At))
	assert.Equal(t, "n-1", got.Reminder.NotificationID)
}

func TestCreateTodo_RequiresTitle(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.Error(t, s.CreateTodo(context.Background(), &model.Todo{Title: "  "}))
}

func TestUpdateTodo_ManagesCompletedAt(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	todo := &model.Todo{Title: "a"}
	require.NoError(t, s.CreateTodo(ctx, todo))

	todo.Status = model.TodoStatusComplete
	require.NoError(t, s.UpdateTodo(ctx, *todo))
	got, err := s.GetTodoByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.CompletedAt)

	got.Status = model.TodoStatusOpen
	require.NoError(t, s.UpdateTodo(ctx, *got))
	got, err = s.GetTodoByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
}

func TestTodo_NotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetTodoByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTodo(ctx, "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTodo(ctx, model.Todo{ID: "missing", Title: "x"}), store.ErrNotFound)
}

func TestGetTodos_Filters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)
	overdue := &model.Todo{Title: "late", DueDate: &past}
	done := &model.Todo{Title: "late but done", DueDate: &past, Status: model.TodoStatusComplete}
	upcoming := &model.Todo{Title: "upcoming", DueDate: &future, Reminder: model.Reminder{Enabled: true, At: &now}}
	for _, td := range []*model.Todo{overdue, done, upcoming} {
		require.NoError(t, s.CreateTodo(ctx, td))
	}

	got, err := s.GetTodos(ctx, store.TodoFilter{Overdue: true, Now: now})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, overdue.ID, got[0].ID)

	enabled := true
	got, err = s.GetTodos(ctx, store.TodoFilter{Reminder: &enabled})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, upcoming.ID, got[0].ID)

	q := "late"
	got, err = s.GetTodos(ctx, store.TodoFilter{Query: &q, SortBy: "title"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "late", got[0].Title)
}

func TestCounts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	since := time.Now().Add(-time.Minute)

	for _, td := range []*model.Todo{
		{Title: "a"},
		{Title: "b", Status: model.TodoStatusInProgress},
		{Title: "c", Category: "work"},
		{Title: "d", Category: "work"},
		{Title: "e", Category: "home"},
	} {
		require.NoError(t, s.CreateTodo(ctx, td))
		if td.Category != "" {
			td.Status = model.TodoStatusComplete
			require.NoError(t, s.UpdateTodo(ctx, *td))
		}
	}

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCounts{Open: 1, InProgress: 1, Complete: 3}, counts)

	created, err := s.CountCreatedSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	completed, err := s.CountCompletedSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 3, completed)

	top, err := s.TopCategorySince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, "work", top)

	top, err = s.TopCategorySince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, top)
}
