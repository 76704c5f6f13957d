package session

import (
	"context"
	"sync"
	"time"
)

// Signal is the monitor's judgement of the stored token at a tick.
type Signal string

const (
	SignalOK           Signal = "ok"
	SignalExpiringSoon Signal = "expiring-soon"
	SignalExpired      Signal = "expired"
)

// Monitor watches the stored token's remaining lifetime. It decodes claims
// without verifying them; the result only ever drives client behavior.
type Monitor struct {
	store    TokenStore
	window   time.Duration
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	dismissed bool
}

// NewMonitor builds a monitor. window is how long before expiry a token
// counts as expiring-soon; interval is the polling cadence.
func NewMonitor(store TokenStore, window, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{store: store, window: window, interval: interval, now: time.Now}
}

// WithClock overrides the time source for tests.
func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// Evaluate maps the stored token's remaining lifetime to a signal. A missing
// or unparseable token is an implicit expired, not an error: a leaked tick
// after logout must tear the session down rather than blow up.
func (m *Monitor) Evaluate() Signal {
	raw, ok := m.store.Load()
	if !ok {
		return SignalExpired
	}
	view, err := DecodeView(raw)
	if err != nil {
		return SignalExpired
	}

	remaining := view.Remaining(m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case remaining <= 0:
		return SignalExpired
	case remaining <= m.window:
		if m.dismissed {
			return SignalOK
		}
		return SignalExpiringSoon
	default:
		// Back above the window (a refresh landed); re-arm the prompt.
		m.dismissed = false
		return SignalOK
	}
}

// Dismiss suppresses further expiring-soon signals until the remaining
// lifetime rises back above the warning window.
func (m *Monitor) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = true
}

// ResetDismissal re-arms the prompt immediately, e.g. after a refresh.
func (m *Monitor) ResetDismissal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = false
}

// Run ticks until the context is cancelled. The handler runs synchronously on
// the loop goroutine, so a tick that triggers a refresh suspends further
// evaluation until that call resolves; the monitor never overlaps itself.
func (m *Monitor) Run(ctx context.Context, handle func(context.Context, Signal)) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			handle(ctx, m.Evaluate())
		}
	}
}
