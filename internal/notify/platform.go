// Package notify schedules task reminders and aggregate notifications
// on top of a host notification platform.
//
// The platform is injected as a Platform capability; nothing in this
// package owns global state. Notification failures are reported as
// absent handles and logged, never returned to task-mutation callers.
package notify

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors reported by platforms and the engine.
var (
	// ErrUnknownHandle is returned by Platform.Cancel when the handle has
	// already fired, been cancelled, or never existed.
	ErrUnknownHandle = errors.New("unknown notification handle")

	// ErrInvalidTrigger marks a trigger that is neither immediate nor in
	// the future.
	ErrInvalidTrigger = errors.New("invalid notification trigger")

	// ErrUnknownChannel marks a channel outside the fixed taxonomy.
	ErrUnknownChannel = errors.New("unknown notification channel")

	// ErrInvalidTime marks a malformed HH:MM wall-clock value.
	ErrInvalidTime = errors.New("invalid time of day")
)

// Handle is the opaque identifier a platform returns for a scheduled
// notification.
type Handle string

// PermissionState is the last known authorization to deliver notifications.
type PermissionState string

const (
	PermissionUndetermined PermissionState = "undetermined"
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
)

// Trigger decides when a notification fires: either immediately or at an
// absolute instant.
type Trigger struct {
	at        time.Time
	immediate bool
}

// Immediately returns a trigger that fires as soon as it is scheduled.
func Immediately() Trigger {
	return Trigger{immediate: true}
}

// At returns a trigger that fires at t.
func At(t time.Time) Trigger {
	return Trigger{at: t}
}

// IsImmediate reports whether the trigger fires right away.
func (t Trigger) IsImmediate() bool {
	return t.immediate
}

// Time returns the absolute fire time. It is zero for immediate triggers.
func (t Trigger) Time() time.Time {
	return t.at
}

// Validate checks that the trigger is immediate or strictly after now.
func (t Trigger) Validate(now time.Time) error {
	if t.immediate {
		return nil
	}
	if t.at.IsZero() || !t.at.After(now) {
		return ErrInvalidTrigger
	}
	return nil
}

// Content is what the platform displays when a notification fires.
type Content struct {
	Title string
	Body  string
	Data  map[string]any

	// ChannelID is empty on platforms without a channel concept.
	ChannelID ChannelID
	Sound     bool
}

// Pending is one entry of the platform's diagnostic listing of
// not-yet-fired notifications.
type Pending struct {
	Handle  Handle
	Content Content
	Trigger Trigger
}

// Delivery is reported by the platform when a notification is received
// while the app is in the foreground.
type Delivery struct {
	Handle  Handle
	Content Content
}

// Response is reported by the platform when the user taps a notification.
type Response struct {
	Handle  Handle
	Content Content
}

// Platform is the host notification primitive. Implementations must be
// safe for concurrent use.
type Platform interface {
	Schedule(ctx context.Context, content Content, trigger Trigger) (Handle, error)
	// Cancel returns an error wrapping ErrUnknownHandle for stale handles.
	Cancel(ctx context.Context, handle Handle) error
	CancelAll(ctx context.Context) error
	Scheduled(ctx context.Context) ([]Pending, error)

	// AddReceivedListener and AddResponseListener return a function that
	// removes the listener.
	AddReceivedListener(fn func(Delivery)) (remove func())
	AddResponseListener(fn func(Response)) (remove func())

	ConfigureChannel(ctx context.Context, ch Channel) error
	SupportsChannels() bool

	PermissionStatus(ctx context.Context) (PermissionState, error)
	RequestPermission(ctx context.Context) (PermissionState, error)
}
