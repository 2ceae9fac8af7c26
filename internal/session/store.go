package session

import (
	"context"
	"encoding/gob"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/miin000/minisocial-admin/internal/api"
	"github.com/miin000/minisocial-admin/internal/metrics"
)

// AuthAPI is the slice of the backend client the store needs. Gates and
// handlers depend on the Store; the Store depends on this abstraction.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (*api.LoginResult, error)
	Register(ctx context.Context, req api.RegisterRequest) error
	Me(ctx context.Context) (*api.ProfileUpdate, error)
}

// Store owns session persistence and the login/register/logout/refresh
// lifecycle. It is immutable after construction and safe for concurrent
// use; all mutable state lives in the request's cookies.
type Store struct {
	cookies *sessions.CookieStore
	backend AuthAPI
}

// NewStore creates a session store. secret signs and encrypts cookies;
// secure controls the cookie Secure flag.
func NewStore(secret string, secure bool, maxAge time.Duration, backend AuthAPI) *Store {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cookies, backend: backend}
}

// Login authenticates against the backend. On success the token, profile,
// and authenticated flag are persisted in one write; on failure the session
// is left untouched and the server-supplied message (or a generic one) is
// flashed. The result is a plain boolean; no error escapes.
func (s *Store) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, identifier, secret string) bool {
	result, err := s.backend.Login(ctx, identifier, secret)
	if err != nil {
		slog.Info("Login rejected", "identifier", identifier, "error", err)
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		s.Flash(w, r, FlashError, userMessage(err, "Login failed. Please try again."))
		return false
	}

	profile := result.User
	sess := Session{
		Token:         result.AccessToken,
		Profile:       &profile,
		Authenticated: true,
	}
	if err := s.save(w, r, sess); err != nil {
		slog.Error("Failed to persist session after login", "error", err)
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		s.Flash(w, r, FlashError, "Login failed. Please try again.")
		return false
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.Flash(w, r, FlashSuccess, "Signed in.")
	return true
}

// Register creates an account. It never authenticates the caller; a
// successful registration still requires a login.
func (s *Store) Register(ctx context.Context, w http.ResponseWriter, r *http.Request, email, username, fullName, secret string) bool {
	req := api.RegisterRequest{
		Email:    email,
		Username: username,
		FullName: fullName,
		Password: secret,
	}
	if err := s.backend.Register(ctx, req); err != nil {
		slog.Info("Registration rejected", "email", email, "error", err)
		s.Flash(w, r, FlashError, userMessage(err, "Registration failed. Please try again."))
		return false
	}

	s.Flash(w, r, FlashSuccess, "Account created. Please sign in.")
	return true
}

// Logout clears the session synchronously. It needs no network access and
// can be called at any time; once it returns, the caller is fully logged
// out regardless of any request still in flight.
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) {
	s.reset(w, r)
	s.Flash(w, r, FlashSuccess, "Signed out.")
}

// FetchCurrentProfile revalidates the credential against the backend and
// merges the authoritative profile into the session (response fields
// overwrite, absent fields are preserved). Without a credential it is a
// no-op. Any failure is treated as a revoked credential and forces the
// logout path. This is the only mechanism that reconciles a locally
// authenticated client with a server that has invalidated the token.
// It returns the session as persisted after the call.
func (s *Store) FetchCurrentProfile(ctx context.Context, w http.ResponseWriter, r *http.Request) (Session, error) {
	sess := s.Load(r)
	if sess.Token == "" {
		return Session{}, nil
	}

	update, err := s.backend.Me(NewContext(ctx, sess))
	if err != nil {
		slog.Info("Session revalidation failed, forcing logout", "error", err)
		metrics.SessionValidationsTotal.WithLabelValues("revoked").Inc()
		s.reset(w, r)
		s.Flash(w, r, FlashError, "Your session has expired. Please sign in again.")
		return Session{}, err
	}

	metrics.SessionValidationsTotal.WithLabelValues("ok").Inc()
	sess.Profile = update.Merge(sess.Profile)
	sess.Authenticated = true
	if err := s.save(w, r, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SetProfile overwrites the persisted profile without a refetch. Used after
// profile-mutating calls so the session stays in sync. A nil profile clears
// it. No-op for unauthenticated sessions.
func (s *Store) SetProfile(w http.ResponseWriter, r *http.Request, profile *api.Profile) {
	sess := s.Load(r)
	if sess.Token == "" {
		return
	}
	sess.Profile = profile
	if err := s.save(w, r, sess); err != nil {
		slog.Error("Failed to persist profile update", "error", err)
	}
}

// userMessage prefers the backend's message over the generic fallback.
func userMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot user-visible notification, the server-side stand-in
// for a toast.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Flash queues a notification for the next rendered page.
func (s *Store) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	ck, err := s.cookies.Get(r, flashName)
	if err != nil {
		ck, err = s.cookies.New(r, flashName)
		if err != nil {
			return
		}
	}
	ck.AddFlash(Flash{Kind: kind, Message: message})
	if err := ck.Save(r, w); err != nil {
		slog.Warn("Failed to save flash", "error", err)
	}
}

// PopFlashes drains queued notifications.
func (s *Store) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	ck, err := s.cookies.Get(r, flashName)
	if err != nil {
		return nil
	}

	raw := ck.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := ck.Save(r, w); err != nil {
		slog.Warn("Failed to clear flashes", "error", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
