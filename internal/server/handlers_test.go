package server

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/miin000/minisocial-admin/internal/api"
	"github.com/miin000/minisocial-admin/internal/config"
	"github.com/miin000/minisocial-admin/internal/database"
	apperrors "github.com/miin000/minisocial-admin/internal/errors"
	"github.com/miin000/minisocial-admin/internal/session"
)

// --- Mock implementations ---

// mockBackend implements both the session store's AuthAPI and the server's
// BackendAPI so one mock drives a whole test.
type mockBackend struct {
	loginFn             func(ctx context.Context, identifier, password string) (*api.LoginResult, error)
	registerFn          func(ctx context.Context, req api.RegisterRequest) error
	meFn                func(ctx context.Context) (*api.ProfileUpdate, error)
	changePasswordFn    func(ctx context.Context, req api.ChangePasswordRequest) error
	updateProfileFn     func(ctx context.Context, patch api.ProfilePatch) (*api.Profile, error)
	updatePreferencesFn func(ctx context.Context, prefs api.Preferences) error
	uploadAvatarFn      func(ctx context.Context, filename string, file io.Reader) (string, error)
	listUsersFn         func(ctx context.Context) ([]api.AdminUser, error)
	toggleUserBanFn     func(ctx context.Context, id string) error
	deleteUserFn        func(ctx context.Context, id string) error
	listGroupsFn        func(ctx context.Context) ([]api.Group, error)
	setGroupStatusFn    func(ctx context.Context, id, status string) error
	listPostsFn         func(ctx context.Context) ([]api.Post, error)
	deletePostFn        func(ctx context.Context, id string) error
	listReportsFn       func(ctx context.Context) ([]api.Report, error)
	resolveReportFn     func(ctx context.Context, id, status string) error

	meCalls int
}

func (m *mockBackend) Login(ctx context.Context, identifier, password string) (*api.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, identifier, password)
	}
	return &api.LoginResult{
		AccessToken: "test-token",
		User:        api.Profile{ID: "u1", Username: "admin", Email: "admin@example.com", Role: "admin"},
	}, nil
}

func (m *mockBackend) Register(ctx context.Context, req api.RegisterRequest) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil
}

func (m *mockBackend) Me(ctx context.Context) (*api.ProfileUpdate, error) {
	m.meCalls++
	if m.meFn != nil {
		return m.meFn(ctx)
	}
	return &api.ProfileUpdate{}, nil
}

func (m *mockBackend) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, req)
	}
	return nil
}

func (m *mockBackend) UpdateProfile(ctx context.Context, patch api.ProfilePatch) (*api.Profile, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, patch)
	}
	return &api.Profile{ID: "u1", Username: "admin"}, nil
}

func (m *mockBackend) UpdatePreferences(ctx context.Context, prefs api.Preferences) error {
	if m.updatePreferencesFn != nil {
		return m.updatePreferencesFn(ctx, prefs)
	}
	return nil
}

func (m *mockBackend) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	if m.uploadAvatarFn != nil {
		return m.uploadAvatarFn(ctx, filename, file)
	}
	return "https://cdn.example.com/avatar.png", nil
}

func (m *mockBackend) ListUsers(ctx context.Context) ([]api.AdminUser, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ToggleUserBan(ctx context.Context, id string) error {
	if m.toggleUserBanFn != nil {
		return m.toggleUserBanFn(ctx, id)
	}
	return nil
}

func (m *mockBackend) DeleteUser(ctx context.Context, id string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

func (m *mockBackend) ListGroups(ctx context.Context) ([]api.Group, error) {
	if m.listGroupsFn != nil {
		return m.listGroupsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) SetGroupStatus(ctx context.Context, id, status string) error {
	if m.setGroupStatusFn != nil {
		return m.setGroupStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockBackend) ListPosts(ctx context.Context) ([]api.Post, error) {
	if m.listPostsFn != nil {
		return m.listPostsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) DeletePost(ctx context.Context, id string) error {
	if m.deletePostFn != nil {
		return m.deletePostFn(ctx, id)
	}
	return nil
}

func (m *mockBackend) ListReports(ctx context.Context) ([]api.Report, error) {
	if m.listReportsFn != nil {
		return m.listReportsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ResolveReport(ctx context.Context, id, status string) error {
	if m.resolveReportFn != nil {
		return m.resolveReportFn(ctx, id, status)
	}
	return nil
}

type auditCall struct {
	actor, action, target, detail string
}

type mockAudit struct {
	calls   []auditCall
	recent  []database.AuditEntry
	recordE error
}

func (m *mockAudit) Record(_ context.Context, actor, action, target, detail string) error {
	m.calls = append(m.calls, auditCall{actor, action, target, detail})
	return m.recordE
}

func (m *mockAudit) ListRecent(_ context.Context, _ int) ([]database.AuditEntry, error) {
	return m.recent, nil
}

type mockLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (m *mockLimiter) Allow(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.allowed, m.err
}

type mockHealthChecker struct{ err error }

func (m *mockHealthChecker) Ping(_ context.Context) error        { return m.err }
func (m *mockHealthChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Test helpers ---

var testTemplates = map[string]string{
	"login":           `Login{{range .Flashes}} [{{.Kind}}:{{.Message}}]{{end}}`,
	"register":        `Register{{range .Flashes}} [{{.Kind}}:{{.Message}}]{{end}}`,
	"forgot_password": `ForgotPassword`,
	"dashboard":       `Dashboard {{with .CurrentUser}}{{.Username}}{{end}}{{range .Flashes}} [{{.Kind}}:{{.Message}}]{{end}}{{with .Stats}} users={{.Users}} groups={{.Groups}} posts={{.Posts}} pending={{.PendingReports}}{{end}}{{range .RecentActions}} ({{.Action}}){{end}}`,
	"users":           `Users{{range .Users}} {{.Username}}{{end}}{{range .Flashes}} [{{.Kind}}:{{.Message}}]{{end}}`,
	"groups":          `Groups{{range .Groups}} {{.Name}}:{{.Status}}{{end}}`,
	"posts":           `Posts{{range .Posts}} {{.Author}}{{end}}`,
	"reports":         `Reports{{range .Reports}} {{.Reason}}:{{.Status}}{{end}}`,
	"profile":         `Profile {{with .CurrentUser}}{{.FullName}}{{end}}{{range .Flashes}} [{{.Kind}}:{{.Message}}]{{end}}`,
	"change_password": `ChangePassword`,
}

func newTestServer(t *testing.T, backend *mockBackend, opts ...func(*Server)) *Server {
	t.Helper()

	templates := make(map[string]*template.Template, len(testTemplates))
	for name, text := range testTemplates {
		templates[name] = template.Must(template.New(name + ".html").Parse(text))
	}

	e := echo.New()
	// Install error middleware for tests to match production behavior
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    &config.Config{AppEnv: "test", Port: "8080", TemplatesDir: "web/templates"},
		backend:   backend,
		sessions:  session.NewStore("test-secret-key-32-bytes-long!!!", false, time.Hour, backend),
		templates: templates,
		startTime: time.Now(),
	}
	// CSRF is covered by its own tests; pass through by default
	srv.csrfMiddleware = func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withAudit(audit AuditLog) func(*Server) {
	return func(s *Server) { s.audit = audit }
}

func withLimiter(limiter LoginLimiter) func(*Server) {
	return func(s *Server) { s.limiter = limiter }
}

func withHealthChecks(redis redisHealthChecker, postgres postgresHealthChecker) func(*Server) {
	return func(s *Server) {
		s.redisHealthCheck = redis
		s.postgresHealthCheck = postgres
	}
}

// postForm submits a form request with the given cookies attached.
func postForm(srv *Server, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func get(srv *Server, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

// signIn runs the real login flow and returns the resulting cookies.
func signIn(t *testing.T, srv *Server) []*http.Cookie {
	t.Helper()

	form := url.Values{}
	form.Set("identifier", "admin")
	form.Set("password", "secret")

	rec := postForm(srv, "/login", form, nil)
	require.Equal(t, 302, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	return rec.Result().Cookies()
}

// merge overlays newer cookies on top of older ones by name.
func merge(older, newer []*http.Cookie) []*http.Cookie {
	byName := make(map[string]*http.Cookie)
	for _, ck := range older {
		byName[ck.Name] = ck
	}
	for _, ck := range newer {
		byName[ck.Name] = ck
	}
	out := make([]*http.Cookie, 0, len(byName))
	for _, ck := range byName {
		out = append(out, ck)
	}
	return out
}
