package notify

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// permissionPrompts is the singleflight key shared by every concurrent
// consent request.
const permissionPrompts = "consent"

// PermissionGate tracks authorization to deliver notifications and
// requests it from the platform at most once at a time.
type PermissionGate struct {
	platform Platform
	logger   *slog.Logger
	prompts  singleflight.Group

	mu       sync.Mutex
	state    PermissionState
	prompted bool
}

// NewPermissionGate returns a gate with an undetermined cached state.
func NewPermissionGate(p Platform, logger *slog.Logger) *PermissionGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionGate{
		platform: p,
		logger:   logger,
		state:    PermissionUndetermined,
	}
}

// Cached returns the last known permission state without querying the
// platform.
func (g *PermissionGate) Cached() PermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Granted reports whether the cached state is granted.
func (g *PermissionGate) Granted() bool {
	return g.Cached() == PermissionGranted
}

// HasPermission queries the platform and refreshes the cache. A failed
// query is logged and reported as false.
func (g *PermissionGate) HasPermission(ctx context.Context) bool {
	state, err := g.platform.PermissionStatus(ctx)
	if err != nil {
		g.logger.Warn("querying notification permission", "error", err)
		return false
	}
	g.record(state)
	return state == PermissionGranted
}

// RequestPermission returns true immediately when permission is cached
// as granted. Otherwise it refreshes the state and, unless the user
// already declined a prompt during this process, shows the consent
// prompt. Concurrent callers share a single prompt.
func (g *PermissionGate) RequestPermission(ctx context.Context) bool {
	if g.Granted() {
		return true
	}
	if g.HasPermission(ctx) {
		return true
	}

	g.mu.Lock()
	declined := g.prompted && g.state == PermissionDenied
	g.mu.Unlock()
	if declined {
		return false
	}

	v, err, _ := g.prompts.Do(permissionPrompts, func() (any, error) {
		// A prompt that finished just before this one started may
		// already have granted permission.
		if state, err := g.platform.PermissionStatus(ctx); err == nil && state == PermissionGranted {
			g.record(state)
			return state, nil
		}
		state, err := g.platform.RequestPermission(ctx)
		if err != nil {
			return PermissionUndetermined, err
		}
		g.mu.Lock()
		g.prompted = true
		g.mu.Unlock()
		g.record(state)
		return state, nil
	})
	if err != nil {
		g.logger.Warn("requesting notification permission", "error", err)
		return false
	}

	state := v.(PermissionState)
	if state != PermissionGranted {
		g.logger.Info("notification permission not granted", "state", state)
	}
	return state == PermissionGranted
}

func (g *PermissionGate) record(state PermissionState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
}
