package auth

import "strings"

// RouteClass categorizes a request path for authorization purposes.
type RouteClass string

const (
	// RouteProtected demands a valid token.
	RouteProtected RouteClass = "protected"
	// RoutePublic passes regardless of token presence.
	RoutePublic RouteClass = "public"
	// RouteAuthOnly is reachable only while unauthenticated (login screens).
	RouteAuthOnly RouteClass = "auth-only"
	// RouteIgnored bypasses the gate entirely (assets, docs).
	RouteIgnored RouteClass = "ignored"
)

// RouteTable classifies paths by static prefix match. Ignored prefixes win
// unconditionally so assets nested under a protected section are never
// blocked; among the remaining classes the longest matching prefix wins,
// which is what lets /flights/search stay public under a protected /flights.
type RouteTable struct {
	ignored   []string
	authOnly  []string
	protected []string
	public    []string
}

// NewRouteTable builds a classifier from explicit prefix lists.
func NewRouteTable(ignored, authOnly, protected, public []string) *RouteTable {
	return &RouteTable{
		ignored:   ignored,
		authOnly:  authOnly,
		protected: protected,
		public:    public,
	}
}

// DefaultRouteTable mirrors the application's route surface.
func DefaultRouteTable() *RouteTable {
	return NewRouteTable(
		[]string{"/static", "/assets", "/favicon.ico", "/docs", "/openapi.json", "/redoc"},
		[]string{"/login", "/register"},
		[]string{"/flights", "/bookings", "/chat", "/profile", "/auth/session"},
		[]string{"/", "/health", "/flights/search", "/flights/list", "/auth/login", "/auth/refresh", "/auth/logout"},
	)
}

// Classify maps a request path to its class. Stateless; anything unmatched
// defaults to public.
func (t *RouteTable) Classify(path string) RouteClass {
	if matchLen(t.ignored, path) > 0 {
		return RouteIgnored
	}

	class := RoutePublic
	best := 0
	// Tie on equal prefix length resolves in declaration order below:
	// auth-only over protected over public.
	for _, entry := range []struct {
		prefixes []string
		class    RouteClass
	}{
		{t.authOnly, RouteAuthOnly},
		{t.protected, RouteProtected},
		{t.public, RoutePublic},
	} {
		if n := matchLen(entry.prefixes, path); n > best {
			best = n
			class = entry.class
		}
	}
	return class
}

// matchLen returns the length of the longest prefix matching path, or 0.
func matchLen(prefixes []string, path string) int {
	best := 0
	for _, prefix := range prefixes {
		if !matchesPrefix(prefix, path) {
			continue
		}
		if len(prefix) > best {
			best = len(prefix)
		}
	}
	return best
}

// matchesPrefix reports whether path equals prefix or sits beneath it. A bare
// "/" only matches the root path exactly, not every path.
func matchesPrefix(prefix, path string) bool {
	if prefix == "/" {
		return path == "/"
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
