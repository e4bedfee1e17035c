// Package notifytest provides an in-memory notify.Platform for tests.
package notifytest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nhle/task-reminders/internal/notify"
)

// ErrPlatform is returned by operations configured to fail.
var ErrPlatform = errors.New("platform failure")

// Platform records every call and keeps scheduled notifications in memory.
type Platform struct {
	mu sync.Mutex

	Channels   bool
	Status     notify.PermissionState
	PromptWith notify.PermissionState

	// Failure switches.
	FailSchedule bool
	FailStatus   bool
	FailCancel   bool

	// PromptGate, when set, blocks RequestPermission until it is closed.
	PromptGate chan struct{}

	Prompts        int
	ChannelConfigs []notify.Channel
	Cancelled      []notify.Handle

	next      int
	scheduled map[notify.Handle]notify.Pending
	order     []notify.Handle

	listenerID int
	received   map[int]func(notify.Delivery)
	responses  map[int]func(notify.Response)
}

// New returns a platform with channels, permission undetermined, and a
// prompt that grants.
func New() *Platform {
	return &Platform{
		Channels:   true,
		Status:     notify.PermissionUndetermined,
		PromptWith: notify.PermissionGranted,
		scheduled:  make(map[notify.Handle]notify.Pending),
		received:   make(map[int]func(notify.Delivery)),
		responses:  make(map[int]func(notify.Response)),
	}
}

// Granted returns a platform whose permission is already granted.
func Granted() *Platform {
	p := New()
	p.Status = notify.PermissionGranted
	return p
}

func (p *Platform) Schedule(_ context.Context, content notify.Content, trigger notify.Trigger) (notify.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailSchedule {
		return "", ErrPlatform
	}
	p.next++
	h := notify.Handle(fmt.Sprintf("n-%d", p.next))
	p.scheduled[h] = notify.Pending{Handle: h, Content: content, Trigger: trigger}
	p.order = append(p.order, h)
	return h, nil
}

func (p *Platform) Cancel(_ context.Context, h notify.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailCancel {
		return ErrPlatform
	}
	if _, ok := p.scheduled[h]; !ok {
		return fmt.Errorf("cancel %s: %w", h, notify.ErrUnknownHandle)
	}
	delete(p.scheduled, h)
	p.Cancelled = append(p.Cancelled, h)
	return nil
}

func (p *Platform) CancelAll(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduled = make(map[notify.Handle]notify.Pending)
	return nil
}

func (p *Platform) Scheduled(context.Context) ([]notify.Pending, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.Pending, 0, len(p.scheduled))
	for _, h := range p.order {
		if n, ok := p.scheduled[h]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// Get returns the pending notification for h.
func (p *Platform) Get(h notify.Handle) (notify.Pending, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.scheduled[h]
	return n, ok
}

// Count returns the number of pending notifications.
func (p *Platform) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.scheduled)
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

// Listeners returns the number of registered received and response
// listeners.
func (p *Platform) Listeners() (received, responses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.received), len(p.responses)
}

// Fire delivers the pending notification h to received listeners and
// removes it.
func (p *Platform) Fire(h notify.Handle) {
	p.mu.Lock()
	n, ok := p.scheduled[h]
	delete(p.scheduled, h)
	fns := listeners(p.received)
	p.mu.Unlock()
	if !ok {
		return
	}
	for _, fn := range fns {
		fn(notify.Delivery{Handle: h, Content: n.Content})
	}
}

// Tap reports a user response with the given content.
func (p *Platform) Tap(h notify.Handle, content notify.Content) {
	p.mu.Lock()
	fns := listeners(p.responses)
	p.mu.Unlock()
	for _, fn := range fns {
		fn(notify.Response{Handle: h, Content: content})
	}
}

func (p *Platform) ConfigureChannel(_ context.Context, ch notify.Channel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ChannelConfigs = append(p.ChannelConfigs, ch)
	return nil
}

func (p *Platform) SupportsChannels() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Channels
}

func (p *Platform) PermissionStatus(context.Context) (notify.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailStatus {
		return notify.PermissionUndetermined, ErrPlatform
	}
	return p.Status, nil
}

func (p *Platform) RequestPermission(ctx context.Context) (notify.PermissionState, error) {
	p.mu.Lock()
	p.Prompts++
	gate := p.PromptGate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return notify.PermissionUndetermined, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = p.PromptWith
	return p.Status, nil
}

// PromptCount returns how many times the consent prompt was shown.
func (p *Platform) PromptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Prompts
}

func listeners[T any](m map[int]func(T)) []func(T) {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(T), len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}
