package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/flightdeck/flight-auth/internal/auth"
	"github.com/flightdeck/flight-auth/internal/config"
	"github.com/flightdeck/flight-auth/internal/domain"
	"github.com/flightdeck/flight-auth/internal/events"
	"github.com/flightdeck/flight-auth/internal/repository"
)

// SessionService coordinates token issuance, refresh and revocation. It holds
// no per-session state: tokens are self-verifying, and the only write this
// service ever performs is the optional denylist entry on logout.
type SessionService struct {
	users      repository.UserRepository
	denylist   repository.DenylistRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SessionDependencies encapsulates collaborator requirements.
type SessionDependencies struct {
	UserRepo   repository.UserRepository
	Denylist   repository.DenylistRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies) *SessionService {
	return &SessionService{
		users:      deps.UserRepo,
		denylist:   deps.Denylist,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TTL()),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// IssueForSubject mints a token for an already-established identity. Callers
// (the login collaborator) are responsible for having authenticated the
// subject; this method only confirms the account is live.
func (s *SessionService) IssueForSubject(ctx context.Context, subject string) (*auth.IssuedToken, error) {
	if _, err := s.resolve(ctx, subject); err != nil {
		return nil, err
	}

	issued, err := s.tokenMgr.Issue(subject)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventSessionIssued, subject, events.TokenIssuedPayload{
		TokenID:   issued.TokenID,
		ExpiresAt: issued.ExpiresAt,
	}))
	return issued, nil
}

// Refresh replaces a still-valid token with a fresh one for the same subject.
// It succeeds iff Verify would have succeeded at the moment of the call.
func (s *SessionService) Refresh(ctx context.Context, raw string) (*auth.IssuedToken, error) {
	verified, err := s.tokenMgr.Verify(raw)
	if err != nil {
		s.publishRejected(ctx, err, "refresh")
		return nil, err
	}

	revoked, err := s.denylist.IsRevoked(ctx, verified.TokenID)
	if err != nil {
		s.logger.Warn("denylist check failed", zap.Error(err))
	} else if revoked {
		rej := auth.NewRejectError(auth.ReasonRevoked, nil)
		s.publishRejected(ctx, rej, "refresh")
		return nil, rej
	}

	if _, err := s.resolve(ctx, verified.Subject); err != nil {
		s.publishRejected(ctx, err, "refresh")
		return nil, err
	}

	issued, err := s.tokenMgr.Issue(verified.Subject)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventSessionRefreshed, verified.Subject, events.TokenIssuedPayload{
		TokenID:   issued.TokenID,
		ExpiresAt: issued.ExpiresAt,
		Refreshed: true,
	}))
	return issued, nil
}

// Logout denylists a still-valid token for its remaining lifetime. Invalid or
// already-expired tokens have nothing to revoke; logout never fails for them.
func (s *SessionService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	verified, err := s.tokenMgr.Verify(raw)
	if err != nil {
		return nil
	}

	remaining := time.Until(verified.ExpiresAt)
	if err := s.denylist.Revoke(ctx, verified.TokenID, remaining); err != nil {
		s.logger.Warn("token revocation failed", zap.Error(err))
		return nil
	}

	s.publish(ctx, events.NewEvent(events.EventSessionRevoked, verified.Subject, events.TokenRevokedPayload{
		TokenID:   verified.TokenID,
		Remaining: remaining,
	}))
	return nil
}

// TokenManager exposes the underlying manager for middleware usage.
func (s *SessionService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *SessionService) resolve(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.users.GetActiveByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.NewRejectError(auth.ReasonSubjectNotFound, nil)
		}
		return nil, err
	}
	return user, nil
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *SessionService) publishRejected(ctx context.Context, err error, source string) {
	s.publish(ctx, events.NewEvent(events.EventTokenRejected, "", events.TokenRejectedPayload{
		Reason: string(auth.ReasonOf(err)),
		Source: source,
	}))
}
