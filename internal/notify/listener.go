package notify

import (
	"log/slog"
	"sync"

	"github.com/spf13/cast"
)

// Received is a notification delivered while the app is in the foreground.
type Received struct {
	Handle  Handle
	Channel ChannelID
	Title   string
	Body    string
	Payload Payload // nil when the data map could not be decoded
}

// Tap is a user response to a notification. TaskID and Screen are
// copied from the payload as-is; routing is up to the subscriber.
type Tap struct {
	Handle Handle
	TaskID string
	Screen string
	Kind   Kind
}

// Subscription releases a listener. Close is idempotent.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Close deregisters the listener.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.remove)
}

// Bridge re-exposes platform delivery callbacks as typed events.
type Bridge struct {
	platform Platform
	logger   *slog.Logger
}

// NewBridge returns a bridge over p's listener API.
func NewBridge(p Platform, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{platform: p, logger: logger}
}

// OnReceived calls fn for every notification delivered in the foreground
// until the subscription is closed.
func (b *Bridge) OnReceived(fn func(Received)) *Subscription {
	remove := b.platform.AddReceivedListener(func(d Delivery) {
		r := Received{
			Handle:  d.Handle,
			Channel: d.Content.ChannelID,
			Title:   d.Content.Title,
			Body:    d.Content.Body,
		}
		p, err := DecodePayload(d.Content.Data)
		if err != nil {
			b.logger.Debug("received notification without a known payload", "handle", d.Handle, "error", err)
		}
		r.Payload = p
		Deliveries.WithLabelValues("received", kindLabel(p)).Inc()
		fn(r)
	})
	return &Subscription{remove: remove}
}

// OnTap calls fn for every notification the user taps until the
// subscription is closed.
func (b *Bridge) OnTap(fn func(Tap)) *Subscription {
	remove := b.platform.AddResponseListener(func(r Response) {
		t := Tap{
			Handle: r.Handle,
			TaskID: cast.ToString(r.Content.Data[keyTaskID]),
			Screen: cast.ToString(r.Content.Data[keyScreen]),
			Kind:   Kind(cast.ToString(r.Content.Data[keyType])),
		}
		Deliveries.WithLabelValues("tapped", string(t.Kind)).Inc()
		fn(t)
	})
	return &Subscription{remove: remove}
}

func kindLabel(p Payload) string {
	if p == nil {
		return "unknown"
	}
	return string(p.Kind())
}
