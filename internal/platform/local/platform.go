// Package local implements notify.Platform for a terminal session.
//
// Pending notifications, declared channels and the permission decision
// live in the task database. A Dispatcher fires due notifications to the
// received listeners; taps are injected with Platform.Tap.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/store"
)

const permissionKey = "notifications.permission"

// Prompter asks the user for consent to deliver notifications.
type Prompter interface {
	Prompt(ctx context.Context) (bool, error)
}

// PrompterFunc adapts a function to a Prompter.
type PrompterFunc func(ctx context.Context) (bool, error)

func (f PrompterFunc) Prompt(ctx context.Context) (bool, error) { return f(ctx) }

// Option configures a Platform.
type Option func(*Platform)

// WithPrompter sets the consent prompter. Without one every request is
// denied.
func WithPrompter(pr Prompter) Option {
	return func(p *Platform) { p.prompter = pr }
}

// WithChannels toggles channel support.
func WithChannels(enabled bool) Option {
	return func(p *Platform) { p.channels = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Platform) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) { p.logger = l }
}

// Platform is a notify.Platform backed by a store.Store.
type Platform struct {
	store    store.Store
	prompter Prompter
	channels bool
	now      func() time.Time
	logger   *slog.Logger

	// wake is signalled when an immediate notification is queued.
	wake chan struct{}

	mu         sync.Mutex
	listenerID int
	received   map[int]func(notify.Delivery)
	responses  map[int]func(notify.Response)
}

var _ notify.Platform = (*Platform)(nil)

// New creates a Platform over s. Channels are supported by default.
func New(s store.Store, opts ...Option) *Platform {
	p := &Platform{
		store:     s,
		channels:  true,
		now:       time.Now,
		logger:    slog.Default(),
		wake:      make(chan struct{}, 1),
		received:  make(map[int]func(notify.Delivery)),
		responses: make(map[int]func(notify.Response)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Platform) Schedule(
	ctx context.Context,
	content notify.Content,
	trigger notify.Trigger,
) (notify.Handle, error) {
	now := p.now()
	if err := trigger.Validate(now); err != nil {
		return "", err
	}
	if content.Title == "" {
		return "", fmt.Errorf("notification title must not be empty")
	}

	data, err := json.Marshal(content.Data)
	if err != nil {
		return "", fmt.Errorf("encoding notification data: %w", err)
	}

	fireAt := trigger.Time()
	if trigger.IsImmediate() {
		fireAt = now
	}

	n := model.ScheduledNotification{
		ID:        uuid.New().String(),
		ChannelID: string(content.ChannelID),
		Title:     content.Title,
		Body:      content.Body,
		Data:      string(data),
		Sound:     content.Sound,
		FireAt:    fireAt,
		Immediate: trigger.IsImmediate(),
		CreatedAt: now,
	}
	if err := p.store.InsertNotification(ctx, n); err != nil {
		return "", err
	}

	if trigger.IsImmediate() {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
	return notify.Handle(n.ID), nil
}

func (p *Platform) Cancel(ctx context.Context, h notify.Handle) error {
	err := p.store.DeleteNotification(ctx, string(h))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("cancel %s: %w", h, notify.ErrUnknownHandle)
	}
	return err
}

func (p *Platform) CancelAll(ctx context.Context) error {
	return p.store.DeleteAllNotifications(ctx)
}

func (p *Platform) Scheduled(ctx context.Context) ([]notify.Pending, error) {
	rows, err := p.store.GetNotifications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]notify.Pending, 0, len(rows))
	for _, n := range rows {
		trigger := notify.At(n.FireAt)
		if n.Immediate {
			trigger = notify.Immediately()
		}
		out = append(out, notify.Pending{
			Handle:  notify.Handle(n.ID),
			Content: p.content(n),
			Trigger: trigger,
		})
	}
	return out, nil
}

func (p *Platform) AddReceivedListener(fn func(notify.Delivery)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listenerID++
	id := p.listenerID
	p.received[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.received, id)
	}
}

func (p *Platform) AddResponseListener(fn func(notify.Response)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listenerID++
	id := p.listenerID
	p.responses[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.responses, id)
	}
}

// FireDue delivers every notification due at the current time to the
// received listeners and drops it from the queue. It returns how many
// fired.
func (p *Platform) FireDue(ctx context.Context) (int, error) {
	due, err := p.store.TakeDueNotifications(ctx, p.now())
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	p.mu.Lock()
	fns := make([]func(notify.Delivery), 0, len(p.received))
	for _, fn := range p.received {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, n := range due {
		d := notify.Delivery{Handle: notify.Handle(n.ID), Content: p.content(n)}
		for _, fn := range fns {
			fn(d)
		}
	}
	return len(due), nil
}

// Tap reports that the user opened a delivered notification.
func (p *Platform) Tap(d notify.Delivery) {
	p.mu.Lock()
	fns := make([]func(notify.Response), 0, len(p.responses))
	for _, fn := range p.responses {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(notify.Response{Handle: d.Handle, Content: d.Content})
	}
}

func (p *Platform) ConfigureChannel(ctx context.Context, ch notify.Channel) error {
	vibration := make([]string, len(ch.Vibration))
	for i, d := range ch.Vibration {
		vibration[i] = strconv.FormatInt(d.Milliseconds(), 10)
	}
	return p.store.UpsertChannel(ctx, model.NotificationChannel{
		ID:          string(ch.ID),
		Name:        ch.Name,
		Description: ch.Description,
		Importance:  string(ch.Importance),
		Sound:       ch.Sound,
		VibrationMS: strings.Join(vibration, ","),
		LightColor:  ch.LightColor,
	})
}

func (p *Platform) SupportsChannels() bool {
	return p.channels
}

func (p *Platform) PermissionStatus(ctx context.Context) (notify.PermissionState, error) {
	v, err := p.store.GetSetting(ctx, permissionKey)
	if errors.Is(err, store.ErrNotFound) {
		return notify.PermissionUndetermined, nil
	}
	if err != nil {
		return "", err
	}
	switch state := notify.PermissionState(v); state {
	case notify.PermissionGranted, notify.PermissionDenied:
		return state, nil
	default:
		return notify.PermissionUndetermined, nil
	}
}

// RequestPermission prompts only while the decision is undetermined. A
// recorded decision is returned as is.
func (p *Platform) RequestPermission(ctx context.Context) (notify.PermissionState, error) {
	state, err := p.PermissionStatus(ctx)
	if err != nil {
		return "", err
	}
	if state != notify.PermissionUndetermined {
		return state, nil
	}

	granted := false
	if p.prompter != nil {
		granted, err = p.prompter.Prompt(ctx)
		if err != nil {
			return "", fmt.Errorf("prompting for notification consent: %w", err)
		}
	}

	state = notify.PermissionDenied
	if granted {
		state = notify.PermissionGranted
	}
	if err := p.store.SetSetting(ctx, permissionKey, string(state)); err != nil {
		return "", err
	}
	p.logger.Info("notification permission decided", "state", state)
	return state, nil
}

// ResetPermission forgets the recorded consent decision.
func (p *Platform) ResetPermission(ctx context.Context) error {
	return p.store.SetSetting(ctx, permissionKey, string(notify.PermissionUndetermined))
}

func (p *Platform) content(n model.ScheduledNotification) notify.Content {
	var data map[string]any
	if err := json.Unmarshal([]byte(n.Data), &data); err != nil {
		p.logger.Warn("dropping undecodable notification data", "handle", n.ID, "error", err)
	}
	return notify.Content{
		Title:     n.Title,
		Body:      n.Body,
		Data:      data,
		ChannelID: notify.ChannelID(n.ChannelID),
		Sound:     n.Sound,
	}
}
