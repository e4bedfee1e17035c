package app

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/store"
)

// dailySummaryKey stores the handle of the pending daily summary so a
// new one replaces it instead of stacking.
const dailySummaryKey = "summary.daily.handle"

// DailyStats counts todos by status. Completed covers today only.
func (a *App) DailyStats(ctx context.Context) (notify.DailyStats, error) {
	counts, err := a.store.CountByStatus(ctx)
	if err != nil {
		return notify.DailyStats{}, err
	}
	now := a.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	completed, err := a.store.CountCompletedSince(ctx, midnight)
	if err != nil {
		return notify.DailyStats{}, err
	}
	return notify.DailyStats{
		Pending:    counts.Open,
		InProgress: counts.InProgress,
		Completed:  completed,
	}, nil
}

// WeeklyStats summarizes the last seven days.
func (a *App) WeeklyStats(ctx context.Context) (notify.WeeklyStats, error) {
	since := a.now().AddDate(0, 0, -7)

	completed, err := a.store.CountCompletedSince(ctx, since)
	if err != nil {
		return notify.WeeklyStats{}, err
	}
	created, err := a.store.CountCreatedSince(ctx, since)
	if err != nil {
		return notify.WeeklyStats{}, err
	}
	top, err := a.store.TopCategorySince(ctx, since)
	if err != nil {
		return notify.WeeklyStats{}, err
	}
	return notify.WeeklyStats{Completed: completed, Created: created, TopCategory: top}, nil
}

// ScheduleDailySummary replaces the pending daily summary with one for
// the next configured time. It schedules nothing when the summary is
// disabled.
//
// The body carries the counts taken now, not at delivery, so it can lag
// by up to a day. Calling it again refreshes the counts.
func (a *App) ScheduleDailySummary(ctx context.Context) (notify.Handle, bool, error) {
	if !a.cfg.Summary.DailyEnabled {
		return "", false, nil
	}
	stats, err := a.DailyStats(ctx)
	if err != nil {
		return "", false, err
	}

	prev, err := a.store.GetSetting(ctx, dailySummaryKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", false, err
	}
	a.notify.Engine.Cancel(ctx, notify.Handle(prev))

	h, ok := a.notify.ScheduleDailySummary(ctx, a.cfg.Summary.DailyTime, stats)
	if err := a.store.SetSetting(ctx, dailySummaryKey, string(h)); err != nil {
		return h, ok, err
	}
	return h, ok, nil
}

// SendWeeklySummary delivers the weekly summary now.
func (a *App) SendWeeklySummary(ctx context.Context) (notify.Handle, bool, error) {
	stats, err := a.WeeklyStats(ctx)
	if err != nil {
		return "", false, err
	}
	h, ok := a.notify.SendWeeklySummary(ctx, stats)
	return h, ok, nil
}

// Overdue returns the todos past their due date.
func (a *App) Overdue(ctx context.Context) ([]model.Todo, error) {
	return a.store.GetTodos(ctx, store.TodoFilter{
		Overdue: true,
		Now:     a.now(),
		SortBy:  "due_date",
	})
}

// SendOverdueAlert delivers one alert for every overdue todo. Nothing is
// sent when none are overdue.
func (a *App) SendOverdueAlert(ctx context.Context) (notify.Handle, bool, error) {
	todos, err := a.Overdue(ctx)
	if err != nil {
		return "", false, err
	}
	h, ok := a.notify.SendOverdueAlert(ctx, todos)
	return h, ok, nil
}

// SendDeadlineWarnings warns about every open todo due within window and
// returns how many warnings were scheduled.
func (a *App) SendDeadlineWarnings(ctx context.Context, window time.Duration) (int, error) {
	todos, err := a.store.GetTodos(ctx, store.TodoFilter{SortBy: "due_date"})
	if err != nil {
		return 0, err
	}

	now := a.now()
	sent := 0
	for _, todo := range todos {
		if todo.Status == model.TodoStatusComplete || todo.DueDate == nil {
			continue
		}
		left := todo.DueDate.Sub(now)
		if left <= 0 || left > window {
			continue
		}
		if _, ok := a.notify.SendDeadlineWarning(ctx, todo, left.Hours()); ok {
			sent++
		}
	}
	return sent, nil
}
