package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Request describes one notification to schedule.
type Request struct {
	Title   string
	Body    string
	Trigger Trigger
	Payload Payload
	Channel ChannelID
}

// Scheduler is the subset of Engine used by the reminder manager and
// the aggregate notifiers.
type Scheduler interface {
	Schedule(ctx context.Context, req Request) (Handle, bool)
	Cancel(ctx context.Context, h Handle)
}

// Engine mediates permission, channel and trigger handling for every
// notification. It never returns errors: a false result means the
// notification was denied or rejected, and the reason has been logged.
type Engine struct {
	platform         Platform
	gate             *PermissionGate
	supportsChannels bool
	now              func() time.Time
	logger           *slog.Logger
}

// NewEngine resolves the platform's channel capability once.
func NewEngine(p Platform, gate *PermissionGate, logger *slog.Logger, now func() time.Time) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		platform:         p,
		gate:             gate,
		supportsChannels: p.SupportsChannels(),
		now:              now,
		logger:           logger,
	}
}

// Schedule validates the request, checks permission and hands the
// notification to the platform with channel metadata where supported.
// Invalid requests never reach the consent prompt.
func (e *Engine) Schedule(ctx context.Context, req Request) (Handle, bool) {
	log := e.logger.With("channel", req.Channel)

	ch, ok := LookupChannel(req.Channel)
	if !ok {
		log.Warn("scheduling rejected", "error", ErrUnknownChannel)
		recordSchedule(req.Channel, outcomeRejected)
		return "", false
	}
	if req.Payload == nil {
		log.Warn("scheduling rejected", "error", "missing payload")
		recordSchedule(req.Channel, outcomeRejected)
		return "", false
	}

	if err := req.Trigger.Validate(e.now()); err != nil {
		log.Warn("scheduling rejected", "error", err, "at", req.Trigger.Time())
		recordSchedule(req.Channel, outcomeRejected)
		return "", false
	}

	if !e.gate.Granted() && !e.gate.RequestPermission(ctx) {
		log.Info("notification skipped, permission not granted")
		recordSchedule(req.Channel, outcomeDenied)
		return "", false
	}

	content := Content{
		Title: req.Title,
		Body:  req.Body,
		Data:  EncodePayload(req.Payload),
		Sound: ch.Sound,
	}
	if e.supportsChannels {
		content.ChannelID = ch.ID
	}

	h, err := e.platform.Schedule(ctx, content, req.Trigger)
	if err != nil {
		log.Warn("scheduling rejected by platform", "error", err, "kind", req.Payload.Kind())
		recordSchedule(req.Channel, outcomeRejected)
		return "", false
	}

	log.Debug("notification scheduled", "handle", h, "kind", req.Payload.Kind())
	recordSchedule(req.Channel, outcomeScheduled)
	return h, true
}

// Cancel removes a scheduled notification. Empty and stale handles are
// a silent no-op.
func (e *Engine) Cancel(ctx context.Context, h Handle) {
	if h == "" {
		return
	}
	err := e.platform.Cancel(ctx, h)
	switch {
	case err == nil:
		recordCancel(outcomeCancelled)
	case errors.Is(err, ErrUnknownHandle):
		e.logger.Debug("cancel of stale handle ignored", "handle", h)
		recordCancel(outcomeStale)
	default:
		e.logger.Warn("cancelling notification", "handle", h, "error", err)
		recordCancel(outcomeFailed)
	}
}

// CancelAll clears every scheduled notification on every channel. It is
// meant for destructive resets only; reminder edits use Cancel.
func (e *Engine) CancelAll(ctx context.Context) {
	if err := e.platform.CancelAll(ctx); err != nil {
		e.logger.Warn("cancelling all notifications", "error", err)
		return
	}
	e.logger.Info("all scheduled notifications cancelled")
}

// Pending lists notifications the platform has not fired yet. A failed
// query is logged and reported as empty.
func (e *Engine) Pending(ctx context.Context) []Pending {
	items, err := e.platform.Scheduled(ctx)
	if err != nil {
		e.logger.Warn("listing scheduled notifications", "error", err)
		return nil
	}
	return items
}
