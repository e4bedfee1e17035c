package watch

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/task-reminders/internal/notify"
)

// ReceivedMsg is a tea.Msg sent when a notification is delivered.
type ReceivedMsg struct {
	Received notify.Received
	At       time.Time
}

// TappedMsg is a tea.Msg sent when the user taps a notification.
type TappedMsg struct {
	Tap notify.Tap
}

// Source is the listener API of the notification service.
type Source interface {
	AddNotificationReceivedListener(fn func(notify.Received)) *notify.Subscription
	AddNotificationResponseListener(fn func(notify.Tap)) *notify.Subscription
}

// Feed turns delivery callbacks into Bubble Tea messages.
type Feed struct {
	received chan ReceivedMsg
	taps     chan TappedMsg
	subs     []*notify.Subscription
}

// Subscribe registers listeners on src. Close releases them.
func Subscribe(src Source) *Feed {
	f := &Feed{
		received: make(chan ReceivedMsg, 32),
		taps:     make(chan TappedMsg, 32),
	}
	f.subs = append(f.subs,
		src.AddNotificationReceivedListener(func(r notify.Received) {
			select {
			case f.received <- ReceivedMsg{Received: r, At: time.Now()}:
			default:
				// Feed is full; drop rather than block the dispatcher.
			}
		}),
		src.AddNotificationResponseListener(func(t notify.Tap) {
			select {
			case f.taps <- TappedMsg{Tap: t}:
			default:
			}
		}),
	)
	return f
}

// Close deregisters the listeners.
func (f *Feed) Close() {
	for _, s := range f.subs {
		s.Close()
	}
}

// WaitForReceived returns a tea.Cmd that waits for the next delivery.
// Call it again after handling a ReceivedMsg to keep listening.
func (f *Feed) WaitForReceived() tea.Cmd {
	return func() tea.Msg {
		return <-f.received
	}
}

// WaitForTap returns a tea.Cmd that waits for the next tap.
func (f *Feed) WaitForTap() tea.Cmd {
	return func() tea.Msg {
		return <-f.taps
	}
}
