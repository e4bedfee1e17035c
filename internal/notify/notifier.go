package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/task-reminders/internal/model"
)

// DailyStats is the input of the daily summary.
type DailyStats struct {
	Pending    int
	Completed  int
	InProgress int
}

// WeeklyStats is the input of the weekly summary.
type WeeklyStats struct {
	Completed   int
	Created     int
	TopCategory string
	TotalTime   time.Duration
}

// Notifier builds aggregate notifications and schedules them through
// the engine.
type Notifier struct {
	scheduler Scheduler
	now       func() time.Time
	logger    *slog.Logger
}

// NewNotifier returns a notifier scheduling through s.
func NewNotifier(s Scheduler, logger *slog.Logger, now func() time.Time) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Notifier{scheduler: s, now: now, logger: logger}
}

// ParseTimeOfDay parses an HH:MM wall-clock value.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || len(hh) < 1 || len(hh) > 2 || !digits(hh) || !digits(mm) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NextOccurrence returns the first instant strictly after now whose wall
// clock in now's location reads hour:minute.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// ScheduleDailySummary schedules a single summary for the next
// occurrence of the HH:MM time. Callers schedule the following day's
// summary themselves.
func (n *Notifier) ScheduleDailySummary(ctx context.Context, at string, stats DailyStats) (Handle, bool) {
	hour, minute, err := ParseTimeOfDay(at)
	if err != nil {
		n.logger.Warn("daily summary not scheduled", "error", err)
		return "", false
	}

	return n.scheduler.Schedule(ctx, Request{
		Title:   "📊 Daily Summary",
		Body:    DailySummaryMessage(stats),
		Trigger: At(NextOccurrence(n.now(), hour, minute)),
		Payload: DailySummaryPayload(stats),
		Channel: ChannelDailySummary,
	})
}

// SendWeeklySummary delivers the weekly summary immediately.
func (n *Notifier) SendWeeklySummary(ctx context.Context, stats WeeklyStats) (Handle, bool) {
	return n.scheduler.Schedule(ctx, Request{
		Title:   "📈 Weekly Summary",
		Body:    WeeklySummaryMessage(stats),
		Trigger: Immediately(),
		Payload: WeeklySummaryPayload(stats),
		Channel: ChannelDailySummary,
	})
}

// SendStreakNotification delivers a streak milestone immediately.
func (n *Notifier) SendStreakNotification(ctx context.Context, streak int) (Handle, bool) {
	return n.scheduler.Schedule(ctx, Request{
		Title:   "🔥 Streak",
		Body:    StreakMessage(streak),
		Trigger: Immediately(),
		Payload: StreakPayload{Streak: streak},
		Channel: ChannelStreaks,
	})
}

// SendOverdueAlert delivers one alert covering every overdue todo. An
// empty list schedules nothing.
func (n *Notifier) SendOverdueAlert(ctx context.Context, todos []model.Todo) (Handle, bool) {
	if len(todos) == 0 {
		return "", false
	}

	ids := make([]string, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}

	return n.scheduler.Schedule(ctx, Request{
		Title:   "⚠️ Overdue Tasks",
		Body:    OverdueMessage(todos),
		Trigger: Immediately(),
		Payload: OverduePayload{TaskIDs: ids},
		Channel: ChannelOverdueTasks,
	})
}

// SendDeadlineWarning delivers a warning that todo is due in hours.
func (n *Notifier) SendDeadlineWarning(ctx context.Context, todo model.Todo, hours float64) (Handle, bool) {
	return n.scheduler.Schedule(ctx, Request{
		Title:   "⏳ Deadline Approaching",
		Body:    fmt.Sprintf("%q is due in %s", todo.Title, HoursPhrase(hours)),
		Trigger: Immediately(),
		Payload: DeadlinePayload{Task: todo.ID, HoursUntil: hours},
		Channel: ChannelTaskReminders,
	})
}

// streakMilestones holds the messages for exact milestone days.
var streakMilestones = map[int]string{
	3:   "3 day streak! You're building momentum.",
	7:   "One week streak! Keep the commits coming.",
	14:  "Two week streak! You're on fire.",
	30:  "30 day streak! A full month of shipping.",
	50:  "50 day streak! Unstoppable.",
	100: "100 day streak! Century unlocked.",
}

// StreakMessage picks the message for a streak: exact milestones first,
// then any other multiple of ten, then a generic encouragement.
func StreakMessage(streak int) string {
	if msg, ok := streakMilestones[streak]; ok {
		return msg
	}
	if streak > 0 && streak%10 == 0 {
		return fmt.Sprintf("%d day streak! Amazing!", streak)
	}
	return "Keep it going! Every completed task counts."
}

func DailySummaryMessage(s DailyStats) string {
	return fmt.Sprintf("%d pending | %d in progress | %d done", s.Pending, s.InProgress, s.Completed)
}

func WeeklySummaryMessage(s WeeklyStats) string {
	msg := fmt.Sprintf("This week: %d completed, %d created", s.Completed, s.Created)
	if s.TopCategory != "" {
		msg += fmt.Sprintf(", top category %s", s.TopCategory)
	}
	if s.TotalTime > 0 {
		msg += fmt.Sprintf(", %s focused", s.TotalTime.Round(time.Minute))
	}
	return msg
}

func OverdueMessage(todos []model.Todo) string {
	if len(todos) == 1 {
		return fmt.Sprintf("%q is overdue", todos[0].Title)
	}
	return fmt.Sprintf("You have %d overdue tasks", len(todos))
}

// HoursPhrase renders the time left before a deadline.
func HoursPhrase(hours float64) string {
	switch {
	case hours < 1:
		return "less than an hour"
	case hours == 1:
		return "1 hour"
	default:
		return fmt.Sprintf("%d hours", int(math.Floor(hours)))
	}
}
