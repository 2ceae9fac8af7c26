package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/miin000/minisocial-admin/internal/metrics"
	"github.com/miin000/minisocial-admin/internal/policy"
	"github.com/miin000/minisocial-admin/internal/session"
)

// Paths outside the gate system: infrastructure endpoints and assets.
func isGateExempt(path string) bool {
	if path == "/metrics" || path == "/version" || path == "/favicon.ico" {
		return true
	}
	return strings.HasPrefix(path, "/health/") || strings.HasPrefix(path, "/static/")
}

// edgeGate is the first gate. It runs before routing, classifies the
// request from the session cookie alone, and redirects misplaced requests
// without any network access. The loaded session is stashed in the request
// context so downstream code, including the bearer credential provider,
// sees one consistent snapshot.
func (s *Server) edgeGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		if isGateExempt(path) {
			return next(c)
		}

		sess := s.sessions.Load(c.Request())
		c.SetRequest(c.Request().WithContext(session.NewContext(c.Request().Context(), sess)))

		switch policy.Decide(path, sess.Authenticated) {
		case policy.RedirectLogin:
			metrics.GateRedirectsTotal.WithLabelValues("edge", "login").Inc()
			return c.Redirect(302, policy.LoginPath)
		case policy.RedirectLanding:
			metrics.GateRedirectsTotal.WithLabelValues("edge", "landing").Inc()
			return c.Redirect(302, policy.LandingPath)
		}

		return next(c)
	}
}

// appGate is the second gate, applied to private routes. It revalidates
// the credential against the backend, waits for that call to settle, and
// only then decides. A revoked credential resets the session before the
// decision is made, so the redirect below observes the settled state.
func (s *Server) appGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		path := r.URL.Path

		sess, err := s.sessions.FetchCurrentProfile(r.Context(), c.Response().Writer, r)
		if err != nil {
			sess = session.Session{}
		}
		c.SetRequest(r.WithContext(session.NewContext(r.Context(), sess)))

		switch policy.Decide(path, sess.Authenticated) {
		case policy.RedirectLogin:
			metrics.GateRedirectsTotal.WithLabelValues("app", "login").Inc()
			return c.Redirect(302, policy.LoginPath)
		case policy.RedirectLanding:
			metrics.GateRedirectsTotal.WithLabelValues("app", "landing").Inc()
			return c.Redirect(302, policy.LandingPath)
		}

		return next(c)
	}
}
