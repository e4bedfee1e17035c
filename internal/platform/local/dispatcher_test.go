package local_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/platform/local"
	"github.com/nhle/task-reminders/internal/testutil"
)

func TestDispatcher_FiresImmediateNotifications(t *testing.T) {
	p := local.New(testutil.NewTestStore(t))
	d := local.NewDispatcher(p, time.Hour, nil)

	var (
		mu  sync.Mutex
		got []string
	)
	p.AddReceivedListener(func(del notify.Delivery) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, del.Content.Title)
	})

	d.Start()
	d.Start()
	t.Cleanup(d.Stop)

	_, err := p.Schedule(context.Background(), notify.Content{Title: "now"}, notify.Immediately())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "now", got[0])

	require.Eventually(t, func() bool {
		return d.Status().State == local.DispatchIdle && d.Status().Fired == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	d := local.NewDispatcher(local.New(testutil.NewTestStore(t)), 0, nil)
	d.Stop()
	d.Start()
	d.Stop()
	d.Stop()
}

func TestDispatcher_RestartsAfterStop(t *testing.T) {
	p := local.New(testutil.NewTestStore(t))
	d := local.NewDispatcher(p, time.Hour, nil)

	var (
		mu  sync.Mutex
		got int
	)
	p.AddReceivedListener(func(notify.Delivery) {
		mu.Lock()
		defer mu.Unlock()
		got++
	})

	d.Start()
	d.Stop()
	d.Start()
	t.Cleanup(d.Stop)

	_, err := p.Schedule(context.Background(), notify.Content{Title: "again"}, notify.Immediately())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// A reminder scheduled through the notification service fires through the
// dispatcher and comes back as a typed tap.
func TestService_EndToEnd(t *testing.T) {
	p, c := newPlatform(t, local.WithPrompter(local.PrompterFunc(func(context.Context) (bool, error) {
		return true, nil
	})))
	svc := notify.New(p, notify.WithClock(c.Now))
	ctx := context.Background()
	svc.Init(ctx)

	received := make(chan notify.Received, 1)
	sub := svc.AddNotificationReceivedListener(func(r notify.Received) { received <- r })
	defer sub.Close()
	taps := make(chan notify.Tap, 1)
	tapSub := svc.AddNotificationResponseListener(func(tp notify.Tap) { taps <- tp })
	defer tapSub.Close()

	at := start.Add(30 * time.Minute)
	h, ok := svc.ScheduleTaskReminder(ctx, model.Todo{
		ID:       "t1",
		Title:    "ship",
		Reminder: model.Reminder{Enabled: true, At: &at},
	})
	require.True(t, ok)

	c.Advance(30 * time.Minute)
	n, err := p.FireDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	r := <-received
	assert.Equal(t, h, r.Handle)
	require.NotNil(t, r.Payload)
	assert.Equal(t, "t1", r.Payload.TaskID())

	p.Tap(notify.Delivery{
		Handle:  r.Handle,
		Content: notify.Content{Title: r.Title, Body: r.Body, Data: notify.EncodePayload(r.Payload)},
	})
	tp := <-taps
	assert.Equal(t, "t1", tp.TaskID)
	assert.Equal(t, notify.ScreenTask, tp.Screen)
	assert.Equal(t, notify.KindReminder, tp.Kind)
}
