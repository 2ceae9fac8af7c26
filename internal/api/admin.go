package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns all platform accounts.
func (c *Client) ListUsers(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	if err := c.do(ctx, "list_users", http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ToggleUserBan flips the blocked flag on an account.
func (c *Client) ToggleUserBan(ctx context.Context, id string) error {
	return c.do(ctx, "toggle_user_ban", http.MethodPatch, "/admin/users/"+url.PathEscape(id)+"/ban", nil, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, "delete_user", http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
}

// ListGroups returns all platform groups.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.do(ctx, "list_groups", http.MethodGet, "/admin/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SetGroupStatus sets a group's status ("active" or "disabled").
func (c *Client) SetGroupStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, "set_group_status", http.MethodPut, "/admin/groups/"+url.PathEscape(id)+"/status", body, nil)
}

// ListPosts returns posts for moderation.
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, "list_posts", http.MethodGet, "/admin/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, "delete_post", http.MethodDelete, "/admin/posts/"+url.PathEscape(id), nil, nil)
}

// ListReports returns moderation reports.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var reports []Report
	if err := c.do(ctx, "list_reports", http.MethodGet, "/admin/reports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ResolveReport sets a report's status ("resolved" or "dismissed").
func (c *Client) ResolveReport(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, "resolve_report", http.MethodPatch, "/admin/reports/"+url.PathEscape(id), body, nil)
}
