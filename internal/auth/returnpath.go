package auth

import (
	"net/url"
	"strings"
)

const returnParam = "redirect"

// LoginRedirect builds the login URL carrying the originally requested path.
// The target travels as a query parameter, never as server-side state.
func LoginRedirect(loginPath, target string) string {
	if target == "" || !safeReturnPath(target) {
		return loginPath
	}
	return loginPath + "?" + returnParam + "=" + url.QueryEscape(target)
}

// ConsumeReturnPath resolves the captured return target after a successful
// authentication. Unsafe targets and auth-only pages fall back to the landing
// path; the latter prevents login-to-login redirect loops.
func ConsumeReturnPath(target string, table *RouteTable, landingPath string) string {
	if target == "" || !safeReturnPath(target) {
		return landingPath
	}
	pathOnly := target
	if i := strings.IndexAny(pathOnly, "?#"); i >= 0 {
		pathOnly = pathOnly[:i]
	}
	if table.Classify(pathOnly) == RouteAuthOnly {
		return landingPath
	}
	return target
}

// safeReturnPath accepts only same-site relative paths. Absolute URLs and
// scheme-relative ("//host") forms would allow open redirects.
func safeReturnPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}
