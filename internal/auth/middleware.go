package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/flightdeck/flight-auth/internal/domain"
	"github.com/flightdeck/flight-auth/internal/observability"
	"github.com/flightdeck/flight-auth/internal/repository"
	apperrors "github.com/flightdeck/flight-auth/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the verified token claims
// plus the live account they resolved to.
type Principal struct {
	VerifiedPrincipal
	User *domain.User
}

// GateConfig carries the redirect and cookie settings the gate needs.
type GateConfig struct {
	CookieName  string
	LoginPath   string
	LandingPath string
}

// Gate validates bearer tokens per request and loads principals. It holds no
// mutable state beyond the read-only signing secret, so requests are handled
// in parallel without locking.
type Gate struct {
	tokens   *TokenManager
	users    repository.UserRepository
	denylist repository.DenylistRepository
	routes   *RouteTable
	cfg      GateConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewGate constructs the middleware.
func NewGate(
	tokens *TokenManager,
	users repository.UserRepository,
	denylist repository.DenylistRepository,
	routes *RouteTable,
	cfg GateConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Gate {
	return &Gate{
		tokens:   tokens,
		users:    users,
		denylist: denylist,
		routes:   routes,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handle classifies the request path and enforces the matching policy.
// Terminal in one pass: every branch either calls Next or rejects.
func (g *Gate) Handle(c *fiber.Ctx) error {
	switch g.routes.Classify(c.Path()) {
	case RouteIgnored:
		return c.Next()

	case RoutePublic:
		// Attach a principal opportunistically for personalization; an
		// absent or dead token is not an error on a public path.
		if raw := g.extractToken(c); raw != "" {
			if principal, err := g.authenticate(c.UserContext(), raw); err == nil {
				c.Locals(principalKey, principal)
			}
		}
		return c.Next()

	case RouteAuthOnly:
		if raw := g.extractToken(c); raw != "" {
			if _, err := g.authenticate(c.UserContext(), raw); err == nil {
				g.metrics.RecordAuthDecision("redirect-authenticated")
				return c.Redirect(g.cfg.LandingPath, fiber.StatusFound)
			}
		}
		return c.Next()

	default: // RouteProtected
		raw := g.extractToken(c)
		if raw == "" {
			g.metrics.RecordAuthDecision("missing-token")
			g.logger.Debug("no token for protected path", zap.String("path", c.Path()))
			return g.reject(c, "", false)
		}

		principal, err := g.authenticate(c.UserContext(), raw)
		if err != nil {
			reason := ReasonOf(err)
			g.metrics.RecordAuthDecision(string(reason))
			g.logger.Warn("token rejected",
				zap.String("path", c.Path()),
				zap.String("reason", string(reason)),
			)
			// The stored token is dead weight; tell the caller to drop it.
			return g.reject(c, reason.Wire(), true)
		}

		g.metrics.RecordAuthDecision("ok")
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// authenticate verifies the token, checks the denylist and resolves the
// subject to a live account.
func (g *Gate) authenticate(ctx context.Context, raw string) (*Principal, error) {
	verified, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := g.denylist.IsRevoked(ctx, verified.TokenID)
	if err != nil {
		// Revocation is best effort; an unreachable denylist must not lock
		// out holders of otherwise valid tokens.
		g.logger.Warn("denylist check failed", zap.Error(err))
	} else if revoked {
		return nil, NewRejectError(ReasonRevoked, nil)
	}

	user, err := g.users.GetActiveByEmail(ctx, verified.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewRejectError(ReasonSubjectNotFound, nil)
		}
		return nil, err
	}

	return &Principal{VerifiedPrincipal: *verified, User: user}, nil
}

func (g *Gate) extractToken(c *fiber.Ctx) string {
	return ExtractBearer(c, g.cfg.CookieName)
}

// ExtractBearer reads the bearer token from the Authorization header, falling
// back to the named cookie.
func ExtractBearer(c *fiber.Ctx, cookieName string) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Cookies(cookieName)
}

// reject bounces browsers to the login screen with the requested path
// preserved, and answers API callers with the rejection taxonomy.
func (g *Gate) reject(c *fiber.Ctx, reason RejectReason, clearToken bool) error {
	redirectTo := LoginRedirect(g.cfg.LoginPath, c.OriginalURL())

	if clearToken {
		c.Cookie(&fiber.Cookie{
			Name:     g.cfg.CookieName,
			Value:    "",
			MaxAge:   -1,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	if wantsJSON(c) {
		details := map[string]any{"redirectTo": redirectTo}
		if clearToken {
			details["clearToken"] = true
		}
		if reason == "" {
			return apperrors.NewUnauthorizedWithDetails("authentication required", details)
		}
		return apperrors.NewAuthRejection(string(reason), details)
	}
	return c.Redirect(redirectTo, fiber.StatusFound)
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.XHR() || strings.Contains(c.Get(fiber.HeaderAccept), "application/json")
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
