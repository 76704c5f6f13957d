package session

import (
	"context"
	"time"
)

// Config wires a Session.
type Config struct {
	// RefreshURL is the server's refresh endpoint.
	RefreshURL string
	// WarningWindow is how long before expiry to refresh proactively.
	// Must be shorter than the server's token TTL.
	WarningWindow time.Duration
	// PollInterval is the monitor cadence. Defaults to 30 seconds.
	PollInterval time.Duration
	// RefreshTimeout bounds each refresh call.
	RefreshTimeout time.Duration
	// Prompt and OnForceLogin are passed through to the coordinator.
	Prompt       RefreshDecider
	OnForceLogin ForceLoginFunc
}

// Session is a client's owned authentication state: one token slot, one
// monitor, one coordinator. There is no ambient "current user"; whoever needs
// the identity gets it from this object.
type Session struct {
	store       TokenStore
	monitor     *Monitor
	coordinator *Coordinator
	cancel      context.CancelFunc
}

// New assembles a session around an in-memory token store.
func New(cfg Config) *Session {
	store := NewMemoryStore()
	monitor := NewMonitor(store, cfg.WarningWindow, cfg.PollInterval)
	coordinator := NewCoordinator(store, monitor, CoordinatorConfig{
		RefreshURL:   cfg.RefreshURL,
		Timeout:      cfg.RefreshTimeout,
		Prompt:       cfg.Prompt,
		OnForceLogin: cfg.OnForceLogin,
	})
	return &Session{store: store, monitor: monitor, coordinator: coordinator}
}

// SetToken installs a freshly issued token, typically right after login.
func (s *Session) SetToken(raw string) {
	s.store.Store(raw)
	s.monitor.ResetDismissal()
}

// Token returns the current token for attaching to outbound requests.
func (s *Session) Token() (string, bool) {
	return s.store.Load()
}

// View returns the advisory claims of the current token.
func (s *Session) View() (*ClaimsView, error) {
	raw, ok := s.store.Load()
	if !ok {
		return nil, ErrNoToken
	}
	return DecodeView(raw)
}

// Start launches the monitor loop. It runs until ctx is cancelled or Stop is
// called; both tear the timer down so no tick can fire against a cleared
// token after logout.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.monitor.Run(ctx, func(ctx context.Context, signal Signal) {
		_ = s.coordinator.HandleSignal(ctx, signal)
	})
}

// Stop tears down the monitor loop.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Logout clears the stored token and stops monitoring. Always succeeds
// locally; clearing storage cannot fail.
func (s *Session) Logout() {
	s.Stop()
	s.store.Clear()
}
