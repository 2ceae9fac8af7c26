package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miin000/minisocial-admin/internal/api"
	"github.com/miin000/minisocial-admin/internal/database"
)

func TestDashboard_ShowsRecentAdminActions(t *testing.T) {
	audit := &mockAudit{
		recent: []database.AuditEntry{
			{Actor: "admin", Action: "user.ban_toggle", Target: "u1"},
			{Actor: "admin", Action: "group.status", Target: "g2", Detail: "disabled"},
		},
	}
	srv := newTestServer(t, &mockBackend{}, withAudit(audit))
	cookies := signIn(t, srv)

	rec := get(srv, "/dashboard", cookies)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "(user.ban_toggle)")
	assert.Contains(t, rec.Body.String(), "(group.status)")
}

func TestDashboard_ShowsStatCounts(t *testing.T) {
	backend := &mockBackend{
		listUsersFn: func(ctx context.Context) ([]api.AdminUser, error) {
			return []api.AdminUser{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}, nil
		},
		listGroupsFn: func(ctx context.Context) ([]api.Group, error) {
			return []api.Group{{ID: "g1"}}, nil
		},
		listPostsFn: func(ctx context.Context) ([]api.Post, error) {
			return []api.Post{{ID: "p1"}, {ID: "p2"}}, nil
		},
		listReportsFn: func(ctx context.Context) ([]api.Report, error) {
			return []api.Report{
				{ID: "r1", Status: "pending"},
				{ID: "r2", Status: "resolved"},
				{ID: "r3", Status: "pending"},
			}, nil
		},
	}
	srv := newTestServer(t, backend)
	cookies := signIn(t, srv)

	rec := get(srv, "/dashboard", cookies)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "users=3")
	assert.Contains(t, rec.Body.String(), "groups=1")
	assert.Contains(t, rec.Body.String(), "posts=2")
	assert.Contains(t, rec.Body.String(), "pending=2")
}

func TestDashboard_StatFailuresLeaveCountsAtZero(t *testing.T) {
	backend := &mockBackend{
		listUsersFn: func(ctx context.Context) ([]api.AdminUser, error) {
			return nil, errors.New("backend down")
		},
		listPostsFn: func(ctx context.Context) ([]api.Post, error) {
			return []api.Post{{ID: "p1"}}, nil
		},
	}
	srv := newTestServer(t, backend)
	cookies := signIn(t, srv)

	rec := get(srv, "/dashboard", cookies)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "users=0")
	assert.Contains(t, rec.Body.String(), "posts=1")
}

func TestDashboard_RendersWithoutAuditTrail(t *testing.T) {
	srv := newTestServer(t, &mockBackend{})
	cookies := signIn(t, srv)

	rec := get(srv, "/dashboard", cookies)
	assert.Equal(t, 200, rec.Code)
}

func TestRootRedirectsToDashboard(t *testing.T) {
	srv := newTestServer(t, &mockBackend{})
	cookies := signIn(t, srv)

	rec := get(srv, "/", cookies)
	assert.Equal(t, 302, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
