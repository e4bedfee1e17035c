package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/task-reminders/internal/model"
)

// ErrNotFound is returned when a row addressed by ID does not exist.
var ErrNotFound = errors.New("not found")

// TodoFilter controls filtering and sorting for todo queries.
type TodoFilter struct {
	Status   *string // "open", "in_progress", "complete", or nil (all)
	Query    *string // search title + description
	Overdue  bool    // due before Now and not complete
	Reminder *bool   // reminder enabled or disabled, nil for all
	Now      time.Time
	SortBy   string // "due_date", "created_at", "updated_at", "title"
	SortDesc bool
	Limit    int
}

// StatusCounts is the number of todos in each status.
type StatusCounts struct {
	Open       int `db:"open"`
	InProgress int `db:"in_progress"`
	Complete   int `db:"complete"`
}

// Store defines the persistence interface for todos and for the local
// notification platform's queue, channels and settings.
type Store interface {
	// === Todo CRUD ===

	CreateTodo(ctx context.Context, todo *model.Todo) error
	UpdateTodo(ctx context.Context, todo model.Todo) error
	DeleteTodo(ctx context.Context, id string) error
	GetTodoByID(ctx context.Context, id string) (*model.Todo, error)
	GetTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
	TopCategorySince(ctx context.Context, since time.Time) (string, error)

	// === Notification queue ===

	InsertNotification(ctx context.Context, n model.ScheduledNotification) error
	DeleteNotification(ctx context.Context, id string) error
	DeleteAllNotifications(ctx context.Context) error
	GetNotifications(ctx context.Context) ([]model.ScheduledNotification, error)
	TakeDueNotifications(ctx context.Context, now time.Time) ([]model.ScheduledNotification, error)

	// === Channels ===

	UpsertChannel(ctx context.Context, ch model.NotificationChannel) error
	GetChannels(ctx context.Context) ([]model.NotificationChannel, error)

	// === Settings ===

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
