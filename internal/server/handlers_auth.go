package server

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/miin000/minisocial-admin/internal/metrics"
	"github.com/miin000/minisocial-admin/internal/policy"
	"github.com/miin000/minisocial-admin/internal/session"
)

func (s *Server) handleLoginPage(c echo.Context) error {
	return s.render(c, "login", nil)
}

func (s *Server) handleLogin(c echo.Context) error {
	identifier := strings.TrimSpace(c.FormValue("identifier"))
	password := c.FormValue("password")

	if identifier == "" || password == "" {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Email or username and password are required.")
		return c.Redirect(302, policy.LoginPath)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(c.Request().Context(), identifier)
		if err != nil {
			// Rate limiting is protection, not a dependency. Fail open.
			slog.Warn("Login rate limit check failed", "error", err)
		} else if !allowed {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Too many login attempts. Please wait a minute and try again.")
			return c.Redirect(302, policy.LoginPath)
		}
	}

	if !s.sessions.Login(c.Request().Context(), c.Response().Writer, c.Request(), identifier, password) {
		return c.Redirect(302, policy.LoginPath)
	}

	return c.Redirect(302, policy.LandingPath)
}

func (s *Server) handleRegisterPage(c echo.Context) error {
	return s.render(c, "register", nil)
}

func (s *Server) handleRegister(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	username := strings.TrimSpace(c.FormValue("username"))
	fullName := strings.TrimSpace(c.FormValue("full_name"))
	password := c.FormValue("password")
	confirm := c.FormValue("confirm_password")

	if email == "" || username == "" || password == "" {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Email, username, and password are required.")
		return c.Redirect(302, "/register")
	}
	if password != confirm {
		s.sessions.Flash(c.Response().Writer, c.Request(), session.FlashError, "Passwords do not match.")
		return c.Redirect(302, "/register")
	}

	// Registration never signs the caller in; a fresh login is required.
	if !s.sessions.Register(c.Request().Context(), c.Response().Writer, c.Request(), email, username, fullName, password) {
		return c.Redirect(302, "/register")
	}

	return c.Redirect(302, policy.LoginPath)
}

func (s *Server) handleForgotPasswordPage(c echo.Context) error {
	return s.render(c, "forgot_password", nil)
}

func (s *Server) handleLogout(c echo.Context) error {
	s.sessions.Logout(c.Response().Writer, c.Request())
	return c.Redirect(302, policy.LoginPath)
}
