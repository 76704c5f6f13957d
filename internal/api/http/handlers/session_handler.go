package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/flightdeck/flight-auth/internal/api/dto"
	"github.com/flightdeck/flight-auth/internal/auth"
	"github.com/flightdeck/flight-auth/internal/config"
	"github.com/flightdeck/flight-auth/internal/observability"
	"github.com/flightdeck/flight-auth/internal/service"
	apperrors "github.com/flightdeck/flight-auth/pkg/util"
)

const tokenType = "bearer"

// SessionHandler exposes the token lifecycle endpoints.
type SessionHandler struct {
	sessions *service.SessionService
	routes   *auth.RouteTable
	authCfg  config.AuthConfig
	metrics  *observability.Metrics
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(
	sessions *service.SessionService,
	routes *auth.RouteTable,
	authCfg config.AuthConfig,
	metrics *observability.Metrics,
) *SessionHandler {
	return &SessionHandler{sessions: sessions, routes: routes, authCfg: authCfg, metrics: metrics}
}

// Refresh handles POST /auth/refresh. A currently-valid token (header or
// cookie) is exchanged for a fresh one; the cookie is re-set so browser-held
// state and explicit API consumers both see the replacement.
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	raw := auth.ExtractBearer(c, h.authCfg.CookieName)
	if raw == "" {
		h.metrics.RecordRefresh("rejected")
		return apperrors.NewAuthRejection(string(auth.ReasonMalformed), nil)
	}

	issued, err := h.sessions.Refresh(c.UserContext(), raw)
	if err != nil {
		if rej, ok := auth.AsReject(err); ok {
			h.metrics.RecordRefresh("rejected")
			// Same taxonomy as the gate; callers cannot distinguish "could
			// not refresh" from "was never valid" beyond the reason itself.
			return apperrors.NewAuthRejection(string(rej.Reason.Wire()), nil)
		}
		return apperrors.MapError(err)
	}

	h.metrics.RecordRefresh("ok")
	h.setTokenCookie(c, issued.Raw)
	return c.JSON(dto.TokenResponse{
		Token:     issued.Raw,
		TokenType: tokenType,
		ExpiresAt: issued.ExpiresAt,
	})
}

// Logout handles POST /auth/logout. Clearing the cookie always succeeds; a
// still-valid token is additionally denylisted for its remaining lifetime.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	raw := auth.ExtractBearer(c, h.authCfg.CookieName)
	_ = h.sessions.Logout(c.UserContext(), raw)

	h.clearTokenCookie(c)
	return c.JSON(fiber.Map{"status": "logged out"})
}

// Session handles GET /auth/session. The gate has already attached the
// resolved principal; this just reflects it back for client UX.
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no authenticated session")
	}
	return c.JSON(dto.SessionResponse{
		Subject:   principal.Subject,
		Name:      principal.User.Name,
		IssuedAt:  principal.IssuedAt,
		ExpiresAt: principal.ExpiresAt,
	})
}

// IssueSession mints a token for an already-authenticated subject, sets the
// cookie and resolves the captured return path. The login collaborator calls
// this once it has established the caller's identity.
func (h *SessionHandler) IssueSession(c *fiber.Ctx, subject string) error {
	issued, err := h.sessions.IssueForSubject(c.UserContext(), subject)
	if err != nil {
		if rej, ok := auth.AsReject(err); ok {
			return apperrors.NewAuthRejection(string(rej.Reason.Wire()), nil)
		}
		return apperrors.MapError(err)
	}

	h.setTokenCookie(c, issued.Raw)
	redirectTo := auth.ConsumeReturnPath(c.Query("redirect"), h.routes, h.authCfg.LandingPath)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"auth": dto.TokenResponse{
			Token:     issued.Raw,
			TokenType: tokenType,
			ExpiresAt: issued.ExpiresAt,
		},
		"redirectTo": redirectTo,
	})
}

func (h *SessionHandler) setTokenCookie(c *fiber.Ctx, raw string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.authCfg.CookieName,
		Value:    raw,
		MaxAge:   h.authCfg.CookieMaxAge(),
		Path:     "/",
		Secure:   h.authCfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *SessionHandler) clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.authCfg.CookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		Secure:   h.authCfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
