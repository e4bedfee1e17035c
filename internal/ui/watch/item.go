package watch

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/theme"
)

// DeliveryItem wraps a received notification for the feed list.
type DeliveryItem struct {
	Received notify.Received
	At       time.Time
}

func (i DeliveryItem) FilterValue() string { return i.Received.Title }

// Delivery rebuilds what the platform delivered so it can be tapped.
func (i DeliveryItem) Delivery() notify.Delivery {
	content := notify.Content{
		Title:     i.Received.Title,
		Body:      i.Received.Body,
		ChannelID: i.Received.Channel,
	}
	if i.Received.Payload != nil {
		content.Data = notify.EncodePayload(i.Received.Payload)
	}
	return notify.Delivery{Handle: i.Received.Handle, Content: content}
}

// DeliveryDelegate renders feed entries on one line each.
type DeliveryDelegate struct {
	now func() time.Time
}

func (d DeliveryDelegate) Height() int { return 1 }

func (d DeliveryDelegate) Spacing() int { return 0 }

func (d DeliveryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d DeliveryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(DeliveryItem)
	if !ok {
		return
	}

	channel := string(it.Received.Channel)
	if channel == "" {
		channel = "none"
	}
	badge := theme.ChannelStyle(channel).Render(channel)
	when := theme.DimmedStyle.Render(relativeTime(d.now().Sub(it.At)))

	line := fmt.Sprintf("%s %s  %s  %s", badge, it.Received.Title, it.Received.Body, when)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly age.
func relativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
