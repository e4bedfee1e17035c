package local

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DispatchState is the current state of the dispatcher loop.
type DispatchState int

const (
	DispatchIdle DispatchState = iota
	DispatchRunning
	DispatchError
)

// DispatchStatus describes the most recent dispatch pass.
type DispatchStatus struct {
	State   DispatchState
	LastRun time.Time
	Fired   int
	Error   error
}

// DefaultInterval is used when NewDispatcher gets a non-positive interval.
const DefaultInterval = 5 * time.Second

// dispatchTimeout bounds a single pass over the queue.
const dispatchTimeout = 10 * time.Second

// Dispatcher periodically fires due notifications on a Platform.
type Dispatcher struct {
	platform  *Platform
	interval  time.Duration
	logger    *slog.Logger
	triggerCh chan struct{}
	stopCh    chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	running bool
	status  DispatchStatus
}

// NewDispatcher creates a Dispatcher that checks p every interval.
func NewDispatcher(p *Platform, interval time.Duration, logger *slog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		platform:  p,
		interval:  interval,
		logger:    logger,
		triggerCh: make(chan struct{}, 1),
	}
}

// Start launches the dispatch loop. It is a no-op if already running and
// may be called again after Stop.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})

	go d.loop(d.stopCh, d.done)
}

// Stop halts the loop and waits for the current pass to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	done := d.done
	d.mu.Unlock()

	<-done
}

// Trigger requests an immediate pass.
func (d *Dispatcher) Trigger() {
	select {
	case d.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the outcome of the most recent pass.
func (d *Dispatcher) Status() DispatchStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Dispatcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.dispatch()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.dispatch()
		case <-d.triggerCh:
			d.dispatch()
		case <-d.platform.wake:
			d.dispatch()
		}
	}
}

func (d *Dispatcher) dispatch() {
	d.setStatus(DispatchStatus{State: DispatchRunning})

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	fired, err := d.platform.FireDue(ctx)
	if err != nil {
		d.logger.Warn("dispatching due notifications", "error", err)
		d.setStatus(DispatchStatus{State: DispatchError, LastRun: time.Now(), Error: err})
		return
	}
	if fired > 0 {
		d.logger.Debug("dispatched notifications", "count", fired)
	}
	d.setStatus(DispatchStatus{State: DispatchIdle, LastRun: time.Now(), Fired: fired})
}

func (d *Dispatcher) setStatus(s DispatchStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.State == DispatchRunning {
		d.status.State = DispatchRunning
		return
	}
	d.status = s
}
