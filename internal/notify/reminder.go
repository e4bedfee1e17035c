package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/task-reminders/internal/model"
)

// DefaultReminderLead is how long before the due date a relative
// reminder fires.
const DefaultReminderLead = time.Hour

// ReminderManager binds scheduled notifications to todo reminders and
// keeps them in step as todos change. It mutates the reminder fields of
// the todos it is given; persisting them is the caller's job.
//
// Edits to the same todo are not serialized: when two edits race, the
// last one to finish wins.
type ReminderManager struct {
	scheduler Scheduler
	lead      time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewReminderManager returns a manager scheduling through s.
func NewReminderManager(s Scheduler, lead time.Duration, logger *slog.Logger, now func() time.Time) *ReminderManager {
	if lead <= 0 {
		lead = DefaultReminderLead
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderManager{scheduler: s, lead: lead, now: now, logger: logger}
}

// ReminderTime returns when a reminder for todo fires: its stored
// reminder time, otherwise the due date minus the lead, otherwise now
// plus the lead.
func (m *ReminderManager) ReminderTime(todo model.Todo) time.Time {
	if todo.Reminder.At != nil {
		return *todo.Reminder.At
	}
	return m.derivedTime(todo)
}

func (m *ReminderManager) derivedTime(todo model.Todo) time.Time {
	if todo.DueDate != nil {
		return todo.DueDate.Add(-m.lead)
	}
	return m.now().Add(m.lead)
}

// ScheduleTaskReminder schedules a reminder for todo at its reminder
// time. A time at or before now is treated as stale data and rejected
// without reaching the engine.
func (m *ReminderManager) ScheduleTaskReminder(ctx context.Context, todo model.Todo) (Handle, bool) {
	at := m.ReminderTime(todo)
	if !at.After(m.now()) {
		m.logger.Info("reminder time already passed, not scheduling",
			"todo", todo.ID, "at", at)
		return "", false
	}

	return m.scheduler.Schedule(ctx, Request{
		Title:   "⏰ Task Reminder",
		Body:    reminderBody(todo),
		Trigger: At(at),
		Payload: ReminderPayload{Task: todo.ID},
		Channel: ChannelTaskReminders,
	})
}

// CancelTaskReminder cancels a reminder notification. Stale handles are
// ignored.
func (m *ReminderManager) CancelTaskReminder(ctx context.Context, h Handle) {
	m.scheduler.Cancel(ctx, h)
}

// RescheduleTaskReminder cancels old before scheduling the new reminder,
// so a failure leaves no notification rather than two.
func (m *ReminderManager) RescheduleTaskReminder(ctx context.Context, old Handle, todo model.Todo) (Handle, bool) {
	m.CancelTaskReminder(ctx, old)
	return m.ScheduleTaskReminder(ctx, todo)
}

// EnableReminder turns the todo's reminder on. A nil at makes the
// reminder relative to the due date. It reports whether a notification
// is now scheduled; false leaves the reminder enabled without a handle.
func (m *ReminderManager) EnableReminder(ctx context.Context, todo *model.Todo, at *time.Time) bool {
	todo.Reminder.Enabled = true
	todo.Reminder.Relative = at == nil
	return m.apply(ctx, todo, at)
}

// SetReminderTime moves the reminder to an explicit time, enabling it
// if needed.
func (m *ReminderManager) SetReminderTime(ctx context.Context, todo *model.Todo, at time.Time) bool {
	return m.EnableReminder(ctx, todo, &at)
}

// SetDueDate updates the todo's due date. Relative reminders follow the
// new date; explicit reminder times are left alone.
func (m *ReminderManager) SetDueDate(ctx context.Context, todo *model.Todo, due *time.Time) bool {
	todo.DueDate = due
	if !todo.Reminder.Enabled {
		return false
	}
	if !todo.Reminder.Relative {
		return todo.Reminder.NotificationID != ""
	}
	return m.apply(ctx, todo, nil)
}

// DisableReminder cancels the todo's reminder and turns it off.
func (m *ReminderManager) DisableReminder(ctx context.Context, todo *model.Todo) {
	m.CancelTaskReminder(ctx, Handle(todo.Reminder.NotificationID))
	todo.Reminder.Enabled = false
	todo.Reminder.NotificationID = ""
}

// TaskCompleted drops the reminder of a finished todo.
func (m *ReminderManager) TaskCompleted(ctx context.Context, todo *model.Todo) {
	m.DisableReminder(ctx, todo)
}

// TaskDeleted cancels the reminder of a todo about to be removed.
func (m *ReminderManager) TaskDeleted(ctx context.Context, todo *model.Todo) {
	m.DisableReminder(ctx, todo)
}

// apply records the effective reminder time and reschedules the
// notification for it.
func (m *ReminderManager) apply(ctx context.Context, todo *model.Todo, at *time.Time) bool {
	effective := m.derivedTime(*todo)
	if at != nil {
		effective = *at
	}
	todo.Reminder.At = &effective

	old := Handle(todo.Reminder.NotificationID)
	todo.Reminder.NotificationID = ""

	h, ok := m.RescheduleTaskReminder(ctx, old, *todo)
	if !ok {
		m.logger.Info("reminder enabled without an active notification", "todo", todo.ID)
		return false
	}
	todo.Reminder.NotificationID = string(h)
	return true
}

func reminderBody(todo model.Todo) string {
	if todo.DueDate == nil {
		return fmt.Sprintf("> %s", todo.Title)
	}
	return fmt.Sprintf("> %s (due %s)", todo.Title, todo.DueDate.Format("Jan 2 15:04"))
}
