package server

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/miin000/minisocial-admin/internal/api"
	"github.com/miin000/minisocial-admin/internal/config"
	"github.com/miin000/minisocial-admin/internal/database"
	apperrors "github.com/miin000/minisocial-admin/internal/errors"
	"github.com/miin000/minisocial-admin/internal/session"
)

// BackendAPI is the slice of the core backend client the handlers use.
// Session lifecycle calls (login, register, me) go through the session
// store instead.
type BackendAPI interface {
	ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, patch api.ProfilePatch) (*api.Profile, error)
	UpdatePreferences(ctx context.Context, prefs api.Preferences) error
	UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error)

	ListUsers(ctx context.Context) ([]api.AdminUser, error)
	ToggleUserBan(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	ListGroups(ctx context.Context) ([]api.Group, error)
	SetGroupStatus(ctx context.Context, id, status string) error
	ListPosts(ctx context.Context) ([]api.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListReports(ctx context.Context) ([]api.Report, error)
	ResolveReport(ctx context.Context, id, status string) error
}

// AuditLog records admin actions taken through the dashboard.
type AuditLog interface {
	Record(ctx context.Context, actor, action, target, detail string) error
	ListRecent(ctx context.Context, limit int) ([]database.AuditEntry, error)
}

// LoginLimiter caps login attempts per identifier.
type LoginLimiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// pageNames lists the templates parsed at startup, one file per page.
var pageNames = []string{
	"login", "register", "forgot_password",
	"dashboard", "users", "groups", "posts", "reports",
	"profile", "change_password",
}

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	backend  BackendAPI
	sessions *session.Store
	audit    AuditLog
	limiter  LoginLimiter

	redisHealthCheck    redisHealthChecker
	postgresHealthCheck postgresHealthChecker

	templates      map[string]*template.Template
	csrfMiddleware echo.MiddlewareFunc
	startTime      time.Time
}

func NewServer(cfg *config.Config, backend BackendAPI, sessions *session.Store, audit AuditLog, limiter LoginLimiter, redisHealth redisHealthChecker, postgresHealth postgresHealthChecker) (*Server, error) {
	// Parse templates once at startup
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFiles(filepath.Join(cfg.TemplatesDir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		templates[name] = tmpl
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:                e,
		config:              cfg,
		backend:             backend,
		sessions:            sessions,
		audit:               audit,
		limiter:             limiter,
		redisHealthCheck:    redisHealth,
		postgresHealthCheck: postgresHealth,
		templates:           templates,
		startTime:           time.Now(),
	}

	srv.csrfMiddleware = middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
	})

	// Register routes
	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	log.Printf("Starting server on port %s", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
