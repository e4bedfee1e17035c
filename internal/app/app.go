// Package app ties the task store to the notification service: every
// task mutation keeps the todo's reminder and its scheduled notification
// in step, and the aggregate notifications are fed from store counts.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/store"
)

// Option configures an App.
type Option func(*App)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// App is the application layer used by the CLI.
type App struct {
	store  store.Store
	notify *notify.Service
	cfg    *model.AppConfig
	now    func() time.Time
	logger *slog.Logger
}

// New creates an App.
func New(s store.Store, svc *notify.Service, cfg *model.AppConfig, opts ...Option) *App {
	a := &App{
		store:  s,
		notify: svc,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Notify returns the notification service.
func (a *App) Notify() *notify.Service {
	return a.notify
}

// NewTodo describes a todo to create.
type NewTodo struct {
	Title       string
	Description string
	Category    string
	DueDate     *time.Time

	// Remind enables a reminder. RemindAt pins it to an explicit time;
	// nil makes it follow the due date.
	Remind   bool
	RemindAt *time.Time
}

// AddTodo creates a todo and, if requested, schedules its reminder.
// Notification failures leave the todo saved with a degraded reminder.
func (a *App) AddTodo(ctx context.Context, in NewTodo) (*model.Todo, error) {
	todo := &model.Todo{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		DueDate:     in.DueDate,
	}
	if err := a.store.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}
	if !in.Remind {
		return todo, nil
	}

	a.notify.Reminders.EnableReminder(ctx, todo, in.RemindAt)
	if err := a.save(ctx, todo, ""); err != nil {
		return nil, err
	}
	return todo, nil
}

// SetReminder enables the todo's reminder at an explicit time, or
// relative to the due date when at is nil.
func (a *App) SetReminder(ctx context.Context, id string, at *time.Time) (*model.Todo, error) {
	return a.mutate(ctx, id, func(todo *model.Todo) error {
		if todo.Status == model.TodoStatusComplete {
			return fmt.Errorf("todo %s is complete", id)
		}
		a.notify.Reminders.EnableReminder(ctx, todo, at)
		return nil
	})
}

// DisableReminder turns the todo's reminder off.
func (a *App) DisableReminder(ctx context.Context, id string) (*model.Todo, error) {
	return a.mutate(ctx, id, func(todo *model.Todo) error {
		a.notify.Reminders.DisableReminder(ctx, todo)
		return nil
	})
}

// SetDueDate changes the todo's due date; a relative reminder moves with it.
func (a *App) SetDueDate(ctx context.Context, id string, due *time.Time) (*model.Todo, error) {
	return a.mutate(ctx, id, func(todo *model.Todo) error {
		a.notify.Reminders.SetDueDate(ctx, todo, due)
		return nil
	})
}

// Complete marks the todo complete and drops its reminder.
func (a *App) Complete(ctx context.Context, id string) (*model.Todo, error) {
	return a.mutate(ctx, id, func(todo *model.Todo) error {
		a.notify.Reminders.TaskCompleted(ctx, todo)
		todo.Status = model.TodoStatusComplete
		return nil
	})
}

// Delete removes the todo, then cancels its reminder. A failed delete
// leaves the reminder scheduled.
func (a *App) Delete(ctx context.Context, id string) error {
	todo, err := a.store.GetTodoByID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.store.DeleteTodo(ctx, id); err != nil {
		return err
	}
	a.notify.Reminders.TaskDeleted(ctx, todo)
	return nil
}

// Todos lists todos matching filter.
func (a *App) Todos(ctx context.Context, filter store.TodoFilter) ([]model.Todo, error) {
	return a.store.GetTodos(ctx, filter)
}

// Resync reschedules enabled reminders whose notification is missing,
// either because scheduling failed earlier or because the queue was
// cleared. Reminders whose time has passed stay degraded. It returns how
// many were restored.
func (a *App) Resync(ctx context.Context) (int, error) {
	enabled := true
	todos, err := a.store.GetTodos(ctx, store.TodoFilter{Reminder: &enabled})
	if err != nil {
		return 0, err
	}

	pending := make(map[notify.Handle]bool)
	for _, p := range a.notify.Engine.Pending(ctx) {
		pending[p.Handle] = true
	}

	restored := 0
	for i := range todos {
		todo := &todos[i]
		if todo.Status == model.TodoStatusComplete {
			continue
		}
		if h := notify.Handle(todo.Reminder.NotificationID); h != "" && pending[h] {
			continue
		}

		var at *time.Time
		if !todo.Reminder.Relative {
			at = todo.Reminder.At
		}
		prev := todo.Reminder.NotificationID
		ok := a.notify.Reminders.EnableReminder(ctx, todo, at)
		if err := a.save(ctx, todo, prev); err != nil {
			return restored, err
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}

// Reset cancels every scheduled notification and clears the stored
// handles. Reminders stay enabled in a degraded state until Resync.
func (a *App) Reset(ctx context.Context) error {
	a.notify.CancelAll(ctx)

	enabled := true
	todos, err := a.store.GetTodos(ctx, store.TodoFilter{Reminder: &enabled})
	if err != nil {
		return err
	}
	for _, todo := range todos {
		if todo.Reminder.NotificationID == "" {
			continue
		}
		todo.Reminder.NotificationID = ""
		if err := a.store.UpdateTodo(ctx, todo); err != nil {
			return err
		}
	}
	return a.store.SetSetting(ctx, dailySummaryKey, "")
}

// mutate loads a todo, applies fn, and saves it.
func (a *App) mutate(ctx context.Context, id string, fn func(*model.Todo) error) (*model.Todo, error) {
	todo, err := a.store.GetTodoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := todo.Reminder.NotificationID
	if err := fn(todo); err != nil {
		return nil, err
	}
	if err := a.save(ctx, todo, prev); err != nil {
		return nil, err
	}
	return todo, nil
}

// save writes todo back. When the write fails, a notification scheduled
// after the todo was loaded has no stored owner, so it is cancelled.
func (a *App) save(ctx context.Context, todo *model.Todo, prev string) error {
	err := a.store.UpdateTodo(ctx, *todo)
	if err == nil {
		return nil
	}
	if h := todo.Reminder.NotificationID; h != "" && h != prev {
		a.notify.Engine.Cancel(ctx, notify.Handle(h))
	}
	return err
}
