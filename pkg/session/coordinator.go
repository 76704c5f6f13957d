package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RefreshDecider is consulted before a proactive refresh; returning false
// dismisses the prompt until the warning window re-arms. A nil decider
// accepts every time, which suits headless clients.
type RefreshDecider func(view ClaimsView) bool

// ForceLoginFunc is invoked when the token has expired and the session must
// be re-established interactively.
type ForceLoginFunc func()

// RefreshError reports a rejected refresh call with the server's taxonomy
// code. The old token remains stored; it is still valid until its expiry.
type RefreshError struct {
	StatusCode int
	Code       string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh rejected (%d %s)", e.StatusCode, e.Code)
}

// CoordinatorConfig wires the coordinator's collaborators.
type CoordinatorConfig struct {
	// RefreshURL is the absolute URL of the server's refresh endpoint.
	RefreshURL string
	// Timeout bounds each refresh call. Defaults to 10 seconds.
	Timeout time.Duration
	// Prompt decides whether to act on expiring-soon. Optional.
	Prompt RefreshDecider
	// OnForceLogin runs after an expired token clears the store. Optional.
	OnForceLogin ForceLoginFunc
	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// Coordinator reacts to monitor signals: it refreshes proactively while the
// token is still valid and tears the session down once it is not.
type Coordinator struct {
	store   TokenStore
	monitor *Monitor
	cfg     CoordinatorConfig
	client  *http.Client
}

// NewCoordinator builds a coordinator bound to its store and monitor.
func NewCoordinator(store TokenStore, monitor *Monitor, cfg CoordinatorConfig) *Coordinator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Coordinator{store: store, monitor: monitor, cfg: cfg, client: client}
}

// HandleSignal applies the coordination rules for one monitor tick.
//
// expiring-soon: offer the extension; on accept call the refresh endpoint and
// swap the stored token. A failed or timed-out refresh keeps the old token in
// place and surfaces the error; it does not log the user out, because the
// existing token stays usable until it actually expires.
//
// expired: clear the store and force re-authentication. Not optional, not
// dismissible.
func (c *Coordinator) HandleSignal(ctx context.Context, signal Signal) error {
	switch signal {
	case SignalExpiringSoon:
		if c.cfg.Prompt != nil {
			raw, ok := c.store.Load()
			if !ok {
				return nil
			}
			view, err := DecodeView(raw)
			if err != nil {
				return nil
			}
			if !c.cfg.Prompt(*view) {
				c.monitor.Dismiss()
				return nil
			}
		}
		return c.Refresh(ctx)

	case SignalExpired:
		c.store.Clear()
		if c.cfg.OnForceLogin != nil {
			c.cfg.OnForceLogin()
		}
		return nil

	default:
		return nil
	}
}

// Refresh exchanges the stored token for a fresh one and swaps it in
// atomically. Safe to race with another holder of the same token: refresh
// only requires validity, so both calls produce independently valid
// replacements and the later write wins.
func (c *Coordinator) Refresh(ctx context.Context) error {
	raw, ok := c.store.Load()
	if !ok {
		return errors.New("no token to refresh")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RefreshURL, bytes.NewReader(nil))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+raw)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &RefreshError{StatusCode: resp.StatusCode, Code: envelope.Error.Code}
	}

	var payload struct {
		Token     string    `json:"token"`
		TokenType string    `json:"tokenType"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	if payload.Token == "" {
		return errors.New("refresh response missing token")
	}

	c.store.Store(payload.Token)
	c.monitor.ResetDismissal()
	return nil
}
