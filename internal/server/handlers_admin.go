package server

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/miin000/minisocial-admin/internal/api"
	"github.com/miin000/minisocial-admin/internal/session"
)

// backendMessage prefers the backend's error message over the fallback.
func backendMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (s *Server) flashError(c echo.Context, err error, fallback string) {
	s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, backendMessage(err, fallback))
}

func (s *Server) flashSuccess(c echo.Context, message string) {
	s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashSuccess, message)
}

// matchesQuery reports whether any of the fields contains the query,
// case-insensitively. An empty query matches everything.
func matchesQuery(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// --- Users ---

func (s *Server) handleUsers(c echo.Context) error {
	users, err := s.backend.ListUsers(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		s.flashError(c, err, "Failed to load users.")
		users = nil
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	role := c.QueryParam("role")

	filtered := make([]api.AdminUser, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		if !matchesQuery(query, u.Username, u.Email) {
			continue
		}
		filtered = append(filtered, u)
	}

	return s.render(c, "users", map[string]any{
		"Users": filtered,
		"Query": query,
		"Role":  role,
	})
}

func (s *Server) handleToggleUserBan(c echo.Context) error {
	id := c.Param("id")

	if err := s.backend.ToggleUserBan(c.Request().Context(), id); err != nil {
		slog.Error("Failed to toggle user ban", "user", id, "error", err)
		s.flashError(c, err, "Failed to update user.")
		return c.Redirect(302, "/dashboard/users")
	}

	s.recordAudit(c, "user.ban_toggle", id, "")
	s.flashSuccess(c, "User status updated.")
	return c.Redirect(302, "/dashboard/users")
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	id := c.Param("id")

	if err := s.backend.DeleteUser(c.Request().Context(), id); err != nil {
		slog.Error("Failed to delete user", "user", id, "error", err)
		s.flashError(c, err, "Failed to delete user.")
		return c.Redirect(302, "/dashboard/users")
	}

	s.recordAudit(c, "user.delete", id, "")
	s.flashSuccess(c, "User deleted.")
	return c.Redirect(302, "/dashboard/users")
}

// --- Groups ---

func (s *Server) handleGroups(c echo.Context) error {
	groups, err := s.backend.ListGroups(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list groups", "error", err)
		s.flashError(c, err, "Failed to load groups.")
		groups = nil
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	status := c.QueryParam("status")

	filtered := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		if status != "" && g.Status != status {
			continue
		}
		if !matchesQuery(query, g.Name, g.Description) {
			continue
		}
		filtered = append(filtered, g)
	}

	return s.render(c, "groups", map[string]any{
		"Groups": filtered,
		"Query":  query,
		"Status": status,
	})
}

func (s *Server) handleSetGroupStatus(c echo.Context) error {
	id := c.Param("id")
	status := c.FormValue("status")

	if status != "active" && status != "disabled" {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Invalid group status.")
		return c.Redirect(302, "/dashboard/groups")
	}

	if err := s.backend.SetGroupStatus(c.Request().Context(), id, status); err != nil {
		slog.Error("Failed to set group status", "group", id, "status", status, "error", err)
		s.flashError(c, err, "Failed to update group.")
		return c.Redirect(302, "/dashboard/groups")
	}

	s.recordAudit(c, "group.status", id, status)
	s.flashSuccess(c, "Group status updated.")
	return c.Redirect(302, "/dashboard/groups")
}

// --- Posts ---

func (s *Server) handlePosts(c echo.Context) error {
	posts, err := s.backend.ListPosts(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list posts", "error", err)
		s.flashError(c, err, "Failed to load posts.")
		posts = nil
	}

	query := strings.TrimSpace(c.QueryParam("q"))

	filtered := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		if !matchesQuery(query, p.Author, p.Content) {
			continue
		}
		filtered = append(filtered, p)
	}

	return s.render(c, "posts", map[string]any{
		"Posts": filtered,
		"Query": query,
	})
}

func (s *Server) handleDeletePost(c echo.Context) error {
	id := c.Param("id")

	if err := s.backend.DeletePost(c.Request().Context(), id); err != nil {
		slog.Error("Failed to delete post", "post", id, "error", err)
		s.flashError(c, err, "Failed to delete post.")
		return c.Redirect(302, "/dashboard/posts")
	}

	s.recordAudit(c, "post.delete", id, "")
	s.flashSuccess(c, "Post deleted.")
	return c.Redirect(302, "/dashboard/posts")
}

// --- Reports ---

func (s *Server) handleReports(c echo.Context) error {
	reports, err := s.backend.ListReports(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list reports", "error", err)
		s.flashError(c, err, "Failed to load reports.")
		reports = nil
	}

	status := c.QueryParam("status")

	filtered := make([]api.Report, 0, len(reports))
	for _, r := range reports {
		if status != "" && r.Status != status {
			continue
		}
		filtered = append(filtered, r)
	}

	return s.render(c, "reports", map[string]any{
		"Reports": filtered,
		"Status":  status,
	})
}

func (s *Server) handleResolveReport(c echo.Context) error {
	id := c.Param("id")
	status := c.FormValue("status")

	if status != "resolved" && status != "dismissed" {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Invalid report status.")
		return c.Redirect(302, "/dashboard/reports")
	}

	if err := s.backend.ResolveReport(c.Request().Context(), id, status); err != nil {
		slog.Error("Failed to resolve report", "report", id, "status", status, "error", err)
		s.flashError(c, err, "Failed to update report.")
		return c.Redirect(302, "/dashboard/reports")
	}

	s.recordAudit(c, "report.resolve", id, status)
	s.flashSuccess(c, "Report updated.")
	return c.Redirect(302, "/dashboard/reports")
}
