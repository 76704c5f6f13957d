package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/flightdeck/flight-auth/internal/api/http"
	"github.com/flightdeck/flight-auth/internal/auth"
	"github.com/flightdeck/flight-auth/internal/domain"
	"github.com/flightdeck/flight-auth/internal/observability"
)

const gateSecret = "gate-test-secret"

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) GetActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeDenylist struct {
	revoked map[string]bool
}

func (f *fakeDenylist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], nil
}

type gateFixture struct {
	app      *fiber.App
	tokens   *auth.TokenManager
	denylist *fakeDenylist
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	tokens := auth.NewTokenManager(gateSecret, 30*time.Minute)
	users := &fakeUsers{users: map[string]*domain.User{
		"pat@example.com": {ID: "u-1", Name: "Pat", Email: "pat@example.com", Status: domain.UserStatusActive},
	}}
	denylist := &fakeDenylist{revoked: map[string]bool{}}
	metrics := observability.NewMetrics()

	gate := auth.NewGate(tokens, users, denylist, auth.DefaultRouteTable(), auth.GateConfig{
		CookieName:  "access_token",
		LoginPath:   "/login",
		LandingPath: "/flights",
	}, zap.NewNop(), metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Use(gate.Handle)

	echoPrincipal := func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return c.JSON(fiber.Map{"subject": ""})
		}
		return c.JSON(fiber.Map{"subject": principal.Subject})
	}
	app.Get("/flights", echoPrincipal)
	app.Get("/flights/search", echoPrincipal)
	app.Get("/login", func(c *fiber.Ctx) error { return c.SendString("login page") })
	app.Get("/static/app.js", func(c *fiber.Ctx) error { return c.SendString("assets") })

	return &gateFixture{app: app, tokens: tokens, denylist: denylist}
}

func (f *gateFixture) issue(t *testing.T, subject string) *auth.IssuedToken {
	t.Helper()
	issued, err := f.tokens.Issue(subject)
	require.NoError(t, err)
	return issued
}

func decodeSubject(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Subject string `json:"subject"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Subject
}

func TestGateRedirectsProtectedWithoutToken(t *testing.T) {
	f := newGateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?redirect=%2Fflights", resp.Header.Get("Location"))
}

func TestGateRejectsProtectedWithoutTokenForAPIClients(t *testing.T) {
	f := newGateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "UNAUTHORIZED", body.Error.Code)
	require.Contains(t, body.Error.Details["redirectTo"], "/login?redirect=")
}

func TestGateAllowsProtectedWithValidToken(t *testing.T) {
	f := newGateFixture(t)
	issued := f.issue(t, "pat@example.com")

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Raw)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pat@example.com", decodeSubject(t, resp))
}

func TestGateAcceptsCookieToken(t *testing.T) {
	f := newGateFixture(t)
	issued := f.issue(t, "pat@example.com")

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: issued.Raw})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pat@example.com", decodeSubject(t, resp))
}

func TestGateRejectsExpiredTokenAndClearsCookie(t *testing.T) {
	f := newGateFixture(t)

	// issued 3 seconds ago with a 2 second TTL: expired by the time it is used
	past := time.Now().Add(-3 * time.Second)
	expiredIssuer := auth.NewTokenManager(gateSecret, 2*time.Second).
		WithClock(func() time.Time { return past })
	issued, err := expiredIssuer.Issue("pat@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: issued.Raw})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "expired", body.Error.Code)
	require.Equal(t, true, body.Error.Details["clearToken"])
	require.Contains(t, resp.Header.Get("Set-Cookie"), "access_token=;")
}

func TestGateRejectsUnknownSubject(t *testing.T) {
	f := newGateFixture(t)
	issued := f.issue(t, "ghost@example.com")

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+issued.Raw)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "subject-not-found", body.Error.Code)
}

func TestGateRejectsRevokedTokenAsExpired(t *testing.T) {
	f := newGateFixture(t)
	issued := f.issue(t, "pat@example.com")
	f.denylist.revoked[issued.TokenID] = true

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+issued.Raw)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "expired", body.Error.Code)
}

func TestGateRedirectsAuthenticatedAwayFromLogin(t *testing.T) {
	f := newGateFixture(t)
	issued := f.issue(t, "pat@example.com")

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: issued.Raw})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/flights", resp.Header.Get("Location"))
}

func TestGateServesLoginToAnonymousUsers(t *testing.T) {
	f := newGateFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "login page", string(body))
}

func TestGateIgnoresAssetPathsEvenWithGarbageToken(t *testing.T) {
	f := newGateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateAttachesPrincipalOnPublicPaths(t *testing.T) {
	f := newGateFixture(t)
	issued := f.issue(t, "pat@example.com")

	// with a valid token, personalization is available
	req := httptest.NewRequest(http.MethodGet, "/flights/search", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Raw)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pat@example.com", decodeSubject(t, resp))

	// without one, the public path still passes
	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/flights/search", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "", decodeSubject(t, resp))
}
