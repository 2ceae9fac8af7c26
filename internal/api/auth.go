package api

import (
	"context"
	"io"
	"net/http"
)

// Login exchanges credentials for a bearer token and the partial profile
// bundled with it.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}
	var result LoginResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new account. It does not authenticate the caller.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, "register", http.MethodPost, "/auth/register", req, nil)
}

// Me fetches the authoritative profile for the current credential.
func (c *Client) Me(ctx context.Context) (*ProfileUpdate, error) {
	var update ProfileUpdate
	if err := c.do(ctx, "me", http.MethodGet, "/auth/me", nil, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, "change_password", http.MethodPost, "/auth/change-password", req, nil)
}

// UpdateProfile applies a partial profile update and returns the result.
func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (*Profile, error) {
	var updated Profile
	if err := c.do(ctx, "update_profile", http.MethodPatch, "/users/profile", patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdatePreferences saves the user's notification and security toggles.
func (c *Client) UpdatePreferences(ctx context.Context, prefs Preferences) error {
	return c.do(ctx, "update_preferences", http.MethodPatch, "/users/preferences", prefs, nil)
}

// UploadAvatar streams an avatar image to the backend and returns the
// stored URL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.upload(ctx, "upload_avatar", "/upload/avatar", "file", filename, file, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}
