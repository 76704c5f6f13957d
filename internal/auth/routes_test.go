package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyDefaultTable(t *testing.T) {
	table := DefaultRouteTable()

	cases := []struct {
		path string
		want RouteClass
	}{
		{"/flights", RouteProtected},
		{"/flights/123", RouteProtected},
		{"/bookings/42", RouteProtected},
		{"/chat", RouteProtected},
		{"/auth/session", RouteProtected},
		{"/flights/search", RoutePublic},
		{"/flights/list", RoutePublic},
		{"/health/live", RoutePublic},
		{"/auth/refresh", RoutePublic},
		{"/login", RouteAuthOnly},
		{"/register", RouteAuthOnly},
		{"/static/app.js", RouteIgnored},
		{"/docs", RouteIgnored},
		{"/favicon.ico", RouteIgnored},
		{"/", RoutePublic},
		{"/anything-else", RoutePublic},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, table.Classify(tc.path), "path %s", tc.path)
	}
}

func TestClassifyIgnoredBeatsProtected(t *testing.T) {
	// asset paths nested under a protected section must never be blocked
	table := NewRouteTable(
		[]string{"/app/assets"},
		nil,
		[]string{"/app"},
		nil,
	)

	require.Equal(t, RouteIgnored, table.Classify("/app/assets/logo.png"))
	require.Equal(t, RouteProtected, table.Classify("/app/dashboard"))
}

func TestClassifyLongestPrefixWins(t *testing.T) {
	table := NewRouteTable(
		nil,
		nil,
		[]string{"/flights"},
		[]string{"/flights/search"},
	)

	require.Equal(t, RoutePublic, table.Classify("/flights/search"))
	require.Equal(t, RoutePublic, table.Classify("/flights/search/advanced"))
	require.Equal(t, RouteProtected, table.Classify("/flights/fl-1"))
}

func TestClassifyDoesNotMatchBarePrefixes(t *testing.T) {
	table := NewRouteTable(nil, nil, []string{"/flights"}, nil)

	// /flightsearch is not under /flights
	require.Equal(t, RoutePublic, table.Classify("/flightsearch"))
}
