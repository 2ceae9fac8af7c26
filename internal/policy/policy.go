// Package policy classifies request paths against the session's
// authentication state. Both route gates (the pre-router cookie check and
// the per-request validated check) consult the same decision function, so
// the public allow-list cannot drift between them.
package policy

// Decision is the outcome of evaluating a path for a caller.
type Decision int

const (
	// Allow lets the request through unmodified.
	Allow Decision = iota
	// RedirectLogin sends an unauthenticated caller to the login page.
	RedirectLogin
	// RedirectLanding sends an authenticated caller away from public pages.
	RedirectLanding
)

const (
	// LoginPath is where unauthenticated callers are sent.
	LoginPath = "/login"
	// LandingPath is the default page for authenticated callers.
	LandingPath = "/dashboard"
)

// publicPaths are reachable without authentication. Everything else
// requires a session; unknown paths fail closed.
var publicPaths = map[string]struct{}{
	"/login":           {},
	"/register":        {},
	"/forgot-password": {},
}

// IsPublic reports whether path is on the public allow-list.
// Classification is by exact match.
func IsPublic(path string) bool {
	_, ok := publicPaths[path]
	return ok
}

// Decide evaluates a path for a caller with the given authentication state.
func Decide(path string, authenticated bool) Decision {
	public := IsPublic(path)
	if !authenticated && !public {
		return RedirectLogin
	}
	if authenticated && public {
		return RedirectLanding
	}
	return Allow
}
