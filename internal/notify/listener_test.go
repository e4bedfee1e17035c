package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/notify/notifytest"
)

func TestBridge_TapForwardsTaskAndScreen(t *testing.T) {
	p := notifytest.Granted()
	b := notify.NewBridge(p, nil)

	var taps []notify.Tap
	sub := b.OnTap(func(tap notify.Tap) { taps = append(taps, tap) })
	defer sub.Close()

	p.Tap("n-1", notify.Content{Data: notify.EncodePayload(notify.DeadlinePayload{Task: "t9", HoursUntil: 2})})

	require.Len(t, taps, 1)
	assert.Equal(t, notify.Tap{Handle: "n-1", TaskID: "t9", Screen: notify.ScreenTask, Kind: notify.KindDeadline}, taps[0])
}

func TestBridge_ReceivedDecodesPayload(t *testing.T) {
	p := notifytest.Granted()
	e := newEngine(p)
	b := notify.NewBridge(p, nil)

	var got []notify.Received
	sub := b.OnReceived(func(r notify.Received) { got = append(got, r) })
	defer sub.Close()

	h, ok := e.Schedule(t.Context(), notify.Request{
		Title:   "🔥 Streak",
		Body:    "body",
		Trigger: notify.Immediately(),
		Payload: notify.StreakPayload{Streak: 30},
		Channel: notify.ChannelStreaks,
	})
	require.True(t, ok)
	p.Fire(h)

	require.Len(t, got, 1)
	assert.Equal(t, h, got[0].Handle)
	assert.Equal(t, notify.StreakPayload{Streak: 30}, got[0].Payload)
}

func TestSubscription_CloseDeregistersOnce(t *testing.T) {
	p := notifytest.Granted()
	b := notify.NewBridge(p, nil)

	received := b.OnReceived(func(notify.Received) {})
	tapped := b.OnTap(func(notify.Tap) {})
	r, s := p.Listeners()
	require.Equal(t, 1, r)
	require.Equal(t, 1, s)

	received.Close()
	received.Close()
	tapped.Close()

	r, s = p.Listeners()
	assert.Zero(t, r)
	assert.Zero(t, s)

	var nilSub *notify.Subscription
	assert.NotPanics(t, nilSub.Close)
}

func TestDecodePayload_AfterJSONRoundTrip(t *testing.T) {
	payloads := []notify.Payload{
		notify.OverduePayload{TaskIDs: []string{"a", "b"}},
		notify.WeeklySummaryPayload{Completed: 4, Created: 6, TopCategory: "home", TotalTime: 2 * time.Hour},
		notify.DailySummaryPayload{Pending: 1, Completed: 2, InProgress: 3},
	}
	for _, want := range payloads {
		raw, err := json.Marshal(notify.EncodePayload(want))
		require.NoError(t, err)

		var data map[string]any
		require.NoError(t, json.Unmarshal(raw, &data))

		got, err := notify.DecodePayload(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := notify.DecodePayload(map[string]any{"type": "promo"})
	assert.Error(t, err)
}
