package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/miin000/minisocial-admin/internal/database"
)

const recentAuditEntries = 20

type dashboardStats struct {
	Users          int
	Groups         int
	Posts          int
	PendingReports int
}

// collectStats derives the overview counters from the admin lists. Each
// count is best-effort: a failing backend call logs and leaves the counter
// at zero rather than taking down the page.
func (s *Server) collectStats(c echo.Context) dashboardStats {
	ctx := c.Request().Context()
	var stats dashboardStats

	if users, err := s.backend.ListUsers(ctx); err != nil {
		slog.Error("Failed to count users for dashboard", "error", err)
	} else {
		stats.Users = len(users)
	}

	if groups, err := s.backend.ListGroups(ctx); err != nil {
		slog.Error("Failed to count groups for dashboard", "error", err)
	} else {
		stats.Groups = len(groups)
	}

	if posts, err := s.backend.ListPosts(ctx); err != nil {
		slog.Error("Failed to count posts for dashboard", "error", err)
	} else {
		stats.Posts = len(posts)
	}

	if reports, err := s.backend.ListReports(ctx); err != nil {
		slog.Error("Failed to count reports for dashboard", "error", err)
	} else {
		for _, r := range reports {
			if r.Status == "pending" {
				stats.PendingReports++
			}
		}
	}

	return stats
}

func (s *Server) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	var recent []database.AuditEntry
	if s.audit != nil {
		var err error
		recent, err = s.audit.ListRecent(ctx, recentAuditEntries)
		if err != nil {
			// The dashboard still renders without the local trail.
			slog.Error("Failed to load recent audit entries", "error", err)
		}
	}

	return s.render(c, "dashboard", map[string]any{
		"Stats":         s.collectStats(c),
		"RecentActions": recent,
	})
}
