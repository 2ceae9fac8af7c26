package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// The edge gate sees every request before routing.
	s.echo.Pre(s.edgeGate)

	// Observability endpoints (gate exempt)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Root - redirect to dashboard (the edge gate has already bounced
	// unauthenticated requests to the login page)
	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(302, "/dashboard")
	})

	// Public pages
	s.echo.GET("/login", s.handleLoginPage, s.csrfMiddleware)
	s.echo.POST("/login", s.handleLogin, s.csrfMiddleware)
	s.echo.GET("/register", s.handleRegisterPage, s.csrfMiddleware)
	s.echo.POST("/register", s.handleRegister, s.csrfMiddleware)
	s.echo.GET("/forgot-password", s.handleForgotPasswordPage)

	// Logout is private but must not revalidate: it works even when the
	// backend is unreachable
	s.echo.POST("/logout", s.handleLogout, s.csrfMiddleware)

	// Dashboard pages (app gate revalidates the credential, CSRF protected)
	s.echo.GET("/dashboard", s.handleDashboard, s.appGate, s.csrfMiddleware)

	s.echo.GET("/dashboard/users", s.handleUsers, s.appGate, s.csrfMiddleware)
	s.echo.POST("/dashboard/users/:id/ban", s.handleToggleUserBan, s.appGate, s.csrfMiddleware)
	s.echo.POST("/dashboard/users/:id/delete", s.handleDeleteUser, s.appGate, s.csrfMiddleware)

	s.echo.GET("/dashboard/groups", s.handleGroups, s.appGate, s.csrfMiddleware)
	s.echo.POST("/dashboard/groups/:id/status", s.handleSetGroupStatus, s.appGate, s.csrfMiddleware)

	s.echo.GET("/dashboard/posts", s.handlePosts, s.appGate, s.csrfMiddleware)
	s.echo.POST("/dashboard/posts/:id/delete", s.handleDeletePost, s.appGate, s.csrfMiddleware)

	s.echo.GET("/dashboard/reports", s.handleReports, s.appGate, s.csrfMiddleware)
	s.echo.POST("/dashboard/reports/:id/resolve", s.handleResolveReport, s.appGate, s.csrfMiddleware)

	// Account pages (authenticated + CSRF protected)
	s.echo.GET("/profile", s.handleProfilePage, s.appGate, s.csrfMiddleware)
	s.echo.POST("/profile", s.handleUpdateProfile, s.appGate, s.csrfMiddleware)
	s.echo.POST("/profile/preferences", s.handleUpdatePreferences, s.appGate, s.csrfMiddleware)
	s.echo.POST("/profile/avatar", s.handleUploadAvatar, s.appGate, s.csrfMiddleware)
	s.echo.GET("/change-password", s.handleChangePasswordPage, s.appGate, s.csrfMiddleware)
	s.echo.POST("/change-password", s.handleChangePassword, s.appGate, s.csrfMiddleware)

	// Static assets (gate exempt)
	s.echo.Static("/static", "web/static")
}
