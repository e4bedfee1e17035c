package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// ChannelID identifies one of the fixed delivery channels.
type ChannelID string

const (
	ChannelTaskReminders ChannelID = "task-reminders"
	ChannelDailySummary  ChannelID = "daily-summary"
	ChannelStreaks       ChannelID = "streaks"
	ChannelOverdueTasks  ChannelID = "overdue-tasks"
)

// Importance is the urgency tier of a channel.
type Importance string

const (
	ImportanceHigh    Importance = "high"
	ImportanceDefault Importance = "default"
)

// Channel is the presentation metadata declared to the platform for a
// delivery category.
type Channel struct {
	ID          ChannelID
	Name        string
	Description string
	Importance  Importance
	Sound       bool
	Vibration   []time.Duration
	LightColor  string
}

func (c Channel) equal(o Channel) bool {
	return c.ID == o.ID &&
		c.Name == o.Name &&
		c.Description == o.Description &&
		c.Importance == o.Importance &&
		c.Sound == o.Sound &&
		c.LightColor == o.LightColor &&
		slices.Equal(c.Vibration, o.Vibration)
}

var shortBuzz = []time.Duration{0, 250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}

// channels is the closed channel taxonomy, in declaration order.
var channels = []Channel{
	{
		ID:          ChannelTaskReminders,
		Name:        "Task Reminders",
		Description: "Reminders for upcoming task deadlines",
		Importance:  ImportanceHigh,
		Sound:       true,
		Vibration:   shortBuzz,
		LightColor:  "#00FF41",
	},
	{
		ID:          ChannelDailySummary,
		Name:        "Daily Summary",
		Description: "Daily overview of pending and completed tasks",
		Importance:  ImportanceDefault,
		Sound:       true,
		Vibration:   shortBuzz,
		LightColor:  "#00FF41",
	},
	{
		ID:          ChannelStreaks,
		Name:        "Streaks",
		Description: "Productivity streak milestones",
		Importance:  ImportanceDefault,
		Sound:       true,
		Vibration:   shortBuzz,
		LightColor:  "#FFD93D",
	},
	{
		ID:          ChannelOverdueTasks,
		Name:        "Overdue Tasks",
		Description: "Alerts for tasks past their due date",
		Importance:  ImportanceHigh,
		Sound:       true,
		Vibration:   []time.Duration{0, 500 * time.Millisecond, 250 * time.Millisecond, 500 * time.Millisecond},
		LightColor:  "#FF3B30",
	},
}

// Channels returns a copy of the fixed channel set.
func Channels() []Channel {
	out := make([]Channel, len(channels))
	for i, c := range channels {
		c.Vibration = slices.Clone(c.Vibration)
		out[i] = c
	}
	return out
}

// LookupChannel returns the metadata for id.
func LookupChannel(id ChannelID) (Channel, bool) {
	for _, c := range channels {
		if c.ID == id {
			c.Vibration = slices.Clone(c.Vibration)
			return c, true
		}
	}
	return Channel{}, false
}

// ChannelRegistry declares the fixed channels to the platform.
type ChannelRegistry struct {
	platform Platform
	logger   *slog.Logger

	mu         sync.Mutex
	configured map[ChannelID]Channel
}

// NewChannelRegistry returns a registry that has not configured anything.
func NewChannelRegistry(p Platform, logger *slog.Logger) *ChannelRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelRegistry{
		platform:   p,
		logger:     logger,
		configured: make(map[ChannelID]Channel),
	}
}

// Configure declares every channel to the platform. Channels already
// declared with identical metadata are skipped, so calling it on every
// start is safe. It is a no-op on platforms without channels.
func (r *ChannelRegistry) Configure(ctx context.Context) error {
	if !r.platform.SupportsChannels() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, ch := range Channels() {
		if prev, ok := r.configured[ch.ID]; ok && prev.equal(ch) {
			continue
		}
		if err := r.platform.ConfigureChannel(ctx, ch); err != nil {
			errs = append(errs, fmt.Errorf("configuring channel %s: %w", ch.ID, err))
			continue
		}
		r.configured[ch.ID] = ch
		r.logger.Debug("notification channel configured", "channel", ch.ID)
	}
	return errors.Join(errs...)
}
