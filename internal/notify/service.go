package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/nhle/task-reminders/internal/model"
)

// Option configures a Service.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
	lead   time.Duration
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithReminderLead sets how long before the due date relative reminders
// fire.
func WithReminderLead(d time.Duration) Option {
	return func(o *options) { o.lead = d }
}

// Service wires the notification components around one platform. The
// application builds exactly one and shares it.
type Service struct {
	Permissions *PermissionGate
	Channels    *ChannelRegistry
	Engine      *Engine
	Reminders   *ReminderManager
	Notifier    *Notifier
	Bridge      *Bridge

	logger *slog.Logger
}

// New builds a Service over p.
func New(p Platform, opts ...Option) *Service {
	o := options{logger: slog.Default(), now: time.Now, lead: DefaultReminderLead}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "notify")

	gate := NewPermissionGate(p, logger)
	engine := NewEngine(p, gate, logger, o.now)
	return &Service{
		Permissions: gate,
		Channels:    NewChannelRegistry(p, logger),
		Engine:      engine,
		Reminders:   NewReminderManager(engine, o.lead, logger, o.now),
		Notifier:    NewNotifier(engine, logger, o.now),
		Bridge:      NewBridge(p, logger),
		logger:      logger,
	}
}

// Init configures channels and primes the permission cache. Failures are
// logged; the service stays usable.
func (s *Service) Init(ctx context.Context) {
	if err := s.Channels.Configure(ctx); err != nil {
		s.logger.Warn("configuring notification channels", "error", err)
	}
	s.Permissions.HasPermission(ctx)
}

// ScheduleTaskReminder schedules todo's reminder. See ReminderManager.
func (s *Service) ScheduleTaskReminder(ctx context.Context, todo model.Todo) (Handle, bool) {
	return s.Reminders.ScheduleTaskReminder(ctx, todo)
}

// CancelTaskReminder cancels a reminder handle; empty and stale handles are ignored.
func (s *Service) CancelTaskReminder(ctx context.Context, h Handle) {
	s.Reminders.CancelTaskReminder(ctx, h)
}

// RescheduleTaskReminder cancels old, then schedules todo's reminder.
func (s *Service) RescheduleTaskReminder(ctx context.Context, old Handle, todo model.Todo) (Handle, bool) {
	return s.Reminders.RescheduleTaskReminder(ctx, old, todo)
}

// ScheduleDailySummary schedules the summary for the next HH:MM.
func (s *Service) ScheduleDailySummary(ctx context.Context, at string, stats DailyStats) (Handle, bool) {
	return s.Notifier.ScheduleDailySummary(ctx, at, stats)
}

// SendWeeklySummary delivers the weekly summary immediately.
func (s *Service) SendWeeklySummary(ctx context.Context, stats WeeklyStats) (Handle, bool) {
	return s.Notifier.SendWeeklySummary(ctx, stats)
}

// SendStreakNotification delivers a streak milestone immediately.
func (s *Service) SendStreakNotification(ctx context.Context, streak int) (Handle, bool) {
	return s.Notifier.SendStreakNotification(ctx, streak)
}

// SendOverdueAlert delivers one alert covering todos. Nothing is sent for an empty list.
func (s *Service) SendOverdueAlert(ctx context.Context, todos []model.Todo) (Handle, bool) {
	return s.Notifier.SendOverdueAlert(ctx, todos)
}

// SendDeadlineWarning warns that todo is due in hours.
func (s *Service) SendDeadlineWarning(ctx context.Context, todo model.Todo, hours float64) (Handle, bool) {
	return s.Notifier.SendDeadlineWarning(ctx, todo, hours)
}

// AddNotificationReceivedListener subscribes fn to delivered notifications.
func (s *Service) AddNotificationReceivedListener(fn func(Received)) *Subscription {
	return s.Bridge.OnReceived(fn)
}

// AddNotificationResponseListener subscribes fn to taps.
func (s *Service) AddNotificationResponseListener(fn func(Tap)) *Subscription {
	return s.Bridge.OnTap(fn)
}

// CancelAll clears every scheduled notification. Destructive resets only.
func (s *Service) CancelAll(ctx context.Context) {
	s.Engine.CancelAll(ctx)
}
