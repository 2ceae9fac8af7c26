package server

import (
	"bytes"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/miin000/minisocial-admin/internal/session"
)

// render executes the named page template, buffering output first so a
// failing template never sends partial HTML. Flashes, the CSRF token, and
// the session snapshot are injected into every page.
func (s *Server) render(c echo.Context, name string, data map[string]any) error {
	tmpl, ok := s.templates[name]
	if !ok {
		slog.Error("Unknown template requested", "name", name)
		return c.String(500, "Failed to render page")
	}

	if data == nil {
		data = map[string]any{}
	}
	data["Flashes"] = s.sessions.PopFlashes(c.Response().Writer, c.Request())
	data["CSRFToken"] = c.Get("csrf")

	sess, _ := session.FromContext(c.Request().Context())
	data["Authenticated"] = sess.Authenticated
	data["CurrentUser"] = sess.Profile

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Template execution failed", "template", name, "path", c.Request().URL.Path, "error", err)
		return c.String(500, "Failed to render page")
	}
	return c.HTMLBlob(200, buf.Bytes())
}

// actor returns the audit identity of the current admin. The username is
// stable and human-readable; the ID disambiguates.
func actor(c echo.Context) string {
	sess, ok := session.FromContext(c.Request().Context())
	if !ok || sess.Profile == nil {
		return "unknown"
	}
	if sess.Profile.Username != "" {
		return sess.Profile.Username
	}
	return sess.Profile.ID
}

// recordAudit writes an audit entry, logging instead of failing the
// request when the trail is unavailable.
func (s *Server) recordAudit(c echo.Context, action, target, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(c.Request().Context(), actor(c), action, target, detail); err != nil {
		slog.Error("Failed to record audit entry", "action", action, "target", target, "error", err)
	}
}
