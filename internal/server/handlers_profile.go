package server

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/miin000/minisocial-admin/internal/api"
	"github.com/miin000/minisocial-admin/internal/session"
)

// 5 MB cap on avatar uploads.
const maxAvatarSize = 5 << 20

func (s *Server) handleProfilePage(c echo.Context) error {
	return s.render(c, "profile", nil)
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	patch := api.ProfilePatch{}
	if v := strings.TrimSpace(c.FormValue("full_name")); v != "" {
		patch.FullName = &v
	}
	if v := strings.TrimSpace(c.FormValue("username")); v != "" {
		patch.Username = &v
	}
	if v := strings.TrimSpace(c.FormValue("email")); v != "" {
		patch.Email = &v
	}
	if v := strings.TrimSpace(c.FormValue("phone")); v != "" {
		patch.Phone = &v
	}

	updated, err := s.backend.UpdateProfile(c.Request().Context(), patch)
	if err != nil {
		slog.Error("Failed to update profile", "error", err)
		s.flashError(c, err, "Failed to update profile.")
		return c.Redirect(302, "/profile")
	}

	// Keep the session copy in sync without waiting for the next refetch.
	s.sessions.SetProfile(c.Response().Writer, c.Request(), updated)
	s.flashSuccess(c, "Profile updated.")
	return c.Redirect(302, "/profile")
}

func (s *Server) handleUpdatePreferences(c echo.Context) error {
	prefs := api.Preferences{
		EmailNotifications: c.FormValue("email_notifications") == "on",
		TwoFactorAuth:      c.FormValue("two_factor_auth") == "on",
		ActivityAlerts:     c.FormValue("activity_alerts") == "on",
	}

	if err := s.backend.UpdatePreferences(c.Request().Context(), prefs); err != nil {
		slog.Error("Failed to update preferences", "error", err)
		s.flashError(c, err, "Failed to update preferences.")
		return c.Redirect(302, "/profile")
	}

	s.flashSuccess(c, "Preferences saved.")
	return c.Redirect(302, "/profile")
}

func (s *Server) handleUploadAvatar(c echo.Context) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Please choose an image to upload.")
		return c.Redirect(302, "/profile")
	}
	if fileHeader.Size > maxAvatarSize {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Avatar must be smaller than 5 MB.")
		return c.Redirect(302, "/profile")
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("Failed to open uploaded avatar", "error", err)
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Failed to read uploaded file.")
		return c.Redirect(302, "/profile")
	}
	defer file.Close()

	url, err := s.backend.UploadAvatar(c.Request().Context(), fileHeader.Filename, file)
	if err != nil {
		slog.Error("Failed to upload avatar", "error", err)
		s.flashError(c, err, "Failed to upload avatar.")
		return c.Redirect(302, "/profile")
	}

	// Persist the new avatar on the session profile.
	sess, _ := session.FromContext(c.Request().Context())
	if sess.Profile != nil {
		profile := *sess.Profile
		profile.Avatar = url
		s.sessions.SetProfile(c.Response().Writer, c.Request(), &profile)
	}

	s.flashSuccess(c, "Avatar updated.")
	return c.Redirect(302, "/profile")
}

func (s *Server) handleChangePasswordPage(c echo.Context) error {
	return s.render(c, "change_password", nil)
}

func (s *Server) handleChangePassword(c echo.Context) error {
	req := api.ChangePasswordRequest{
		CurrentPassword: c.FormValue("current_password"),
		NewPassword:     c.FormValue("new_password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "All password fields are required.")
		return c.Redirect(302, "/change-password")
	}
	if req.NewPassword != req.ConfirmPassword {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "New passwords do not match.")
		return c.Redirect(302, "/change-password")
	}

	if err := s.backend.ChangePassword(c.Request().Context(), req); err != nil {
		slog.Error("Failed to change password", "error", err)
		s.flashError(c, err, "Failed to change password.")
		return c.Redirect(302, "/change-password")
	}

	s.flashSuccess(c, "Password changed.")
	return c.Redirect(302, "/profile")
}
