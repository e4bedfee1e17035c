package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/notify/notifytest"
)

func newNotifier(p notify.Platform) *notify.Notifier {
	return notify.NewNotifier(newEngine(p), nil, fixedClock)
}

func TestStreakMessage(t *testing.T) {
	assert.Contains(t, notify.StreakMessage(7), "week")
	assert.Equal(t, "40 day streak! Amazing!", notify.StreakMessage(40))
	assert.Contains(t, notify.StreakMessage(100), "Century")

	generic := notify.StreakMessage(23)
	assert.NotContains(t, generic, "week")
	assert.NotContains(t, generic, "Century")
	assert.Equal(t, generic, notify.StreakMessage(0))
	assert.Equal(t, generic, notify.StreakMessage(-10))

	for _, milestone := range []int{3, 7, 14, 30, 50, 100} {
		assert.NotEqual(t, generic, notify.StreakMessage(milestone), milestone)
	}
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), notify.NextOccurrence(now, 9, 0))
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), notify.NextOccurrence(now, 18, 0))
	assert.Equal(t, time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC), notify.NextOccurrence(now, 14, 0),
		"the current minute is not strictly after now")

	endOfMonth := time.Date(2026, 3, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC), notify.NextOccurrence(endOfMonth, 8, 0))
}

func TestParseTimeOfDay(t *testing.T) {
	h, m, err := notify.ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:5", "+9:00", "12:+5", "-1:00"} {
		_, _, err := notify.ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, notify.ErrInvalidTime, bad)
	}
}

func TestScheduleDailySummary(t *testing.T) {
	p := notifytest.Granted()
	n := newNotifier(p)
	ctx := context.Background()

	h, ok := n.ScheduleDailySummary(ctx, "09:00", notify.DailyStats{Pending: 3, Completed: 5, InProgress: 1})
	require.True(t, ok)
	pending, _ := p.Get(h)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), pending.Trigger.Time())
	assert.Equal(t, notify.ChannelDailySummary, pending.Content.ChannelID)
	assert.Equal(t, "3 pending | 1 in progress | 5 done", pending.Content.Body)

	h, ok = n.ScheduleDailySummary(ctx, "18:00", notify.DailyStats{})
	require.True(t, ok)
	pending, _ = p.Get(h)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), pending.Trigger.Time())

	_, ok = n.ScheduleDailySummary(ctx, "25:00", notify.DailyStats{})
	assert.False(t, ok)
}

func TestSendOverdueAlert(t *testing.T) {
	p := notifytest.Granted()
	n := newNotifier(p)
	ctx := context.Background()

	_, ok := n.SendOverdueAlert(ctx, nil)
	assert.False(t, ok)
	_, ok = n.SendOverdueAlert(ctx, []model.Todo{})
	assert.False(t, ok)
	assert.Zero(t, p.Count())

	h, ok := n.SendOverdueAlert(ctx, []model.Todo{{ID: "a", Title: "pay rent"}})
	require.True(t, ok)
	single, _ := p.Get(h)
	assert.Equal(t, `"pay rent" is overdue`, single.Content.Body)
	assert.Equal(t, "a", single.Content.Data["taskId"])
	assert.Equal(t, notify.ChannelOverdueTasks, single.Content.ChannelID)
	assert.True(t, single.Trigger.IsImmediate())

	h, ok = n.SendOverdueAlert(ctx, []model.Todo{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	require.True(t, ok)
	many, _ := p.Get(h)
	assert.Equal(t, "You have 3 overdue tasks", many.Content.Body)
	assert.Equal(t, notify.ScreenTasks, many.Content.Data["screen"])
}

func TestHoursPhrase(t *testing.T) {
	assert.Equal(t, "less than an hour", notify.HoursPhrase(0.5))
	assert.Equal(t, "less than an hour", notify.HoursPhrase(0))
	assert.Equal(t, "1 hour", notify.HoursPhrase(1))
	assert.Equal(t, "2 hours", notify.HoursPhrase(2.9))
	assert.Equal(t, "24 hours", notify.HoursPhrase(24))
}

func TestSendDeadlineWarningAndWeeklySummary(t *testing.T) {
	p := notifytest.Granted()
	n := newNotifier(p)
	ctx := context.Background()

	h, ok := n.SendDeadlineWarning(ctx, model.Todo{ID: "a", Title: "deploy"}, 3.5)
	require.True(t, ok)
	warn, _ := p.Get(h)
	assert.Equal(t, `"deploy" is due in 3 hours`, warn.Content.Body)
	assert.Equal(t, notify.ChannelTaskReminders, warn.Content.ChannelID)

	h, ok = n.SendWeeklySummary(ctx, notify.WeeklyStats{Completed: 12, Created: 15, TopCategory: "work", TotalTime: 90 * time.Minute})
	require.True(t, ok)
	weekly, _ := p.Get(h)
	assert.Equal(t, "This week: 12 completed, 15 created, top category work, 1h30m0s focused", weekly.Content.Body)
	assert.True(t, weekly.Trigger.IsImmediate())
}

func TestSendStreakNotification(t *testing.T) {
	p := notifytest.Granted()
	n := newNotifier(p)

	h, ok := n.SendStreakNotification(context.Background(), 14)
	require.True(t, ok)
	got, _ := p.Get(h)
	assert.Equal(t, notify.ChannelStreaks, got.Content.ChannelID)
	assert.Equal(t, 14, got.Content.Data["streak"])
}
