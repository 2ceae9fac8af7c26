package server

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miin000/minisocial-admin/internal/api"
)

func TestUpdateProfile_SendsOnlyProvidedFields(t *testing.T) {
	var got api.ProfilePatch
	backend := &mockBackend{
		updateProfileFn: func(ctx context.Context, patch api.ProfilePatch) (*api.Profile, error) {
			got = patch
			return &api.Profile{ID: "u1", Username: "admin", FullName: "Renamed"}, nil
		},
	}
	srv := newTestServer(t, backend)
	cookies := signIn(t, srv)

	form := url.Values{}
	form.Set("full_name", "Renamed")
	rec := postForm(srv, "/profile", form, cookies)

	assert.Equal(t, 302, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Renamed", *got.FullName)
	assert.Nil(t, got.Username)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.Phone)

	// The session copy was updated without a refetch
	rec2 := get(srv, "/profile", merge(cookies, rec.Result().Cookies()))
	require.Equal(t, 200, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "Renamed")
}

func TestUpdatePreferences(t *testing.T) {
	var got api.Preferences
	backend := &mockBackend{
		updatePreferencesFn: func(ctx context.Context, prefs api.Preferences) error {
			got = prefs
			return nil
		},
	}
	srv := newTestServer(t, backend)
	cookies := signIn(t, srv)

	form := url.Values{}
	form.Set("email_notifications", "on")
	form.Set("activity_alerts", "on")
	rec := postForm(srv, "/profile/preferences", form, cookies)

	assert.Equal(t, 302, rec.Code)
	assert.True(t, got.EmailNotifications)
	assert.False(t, got.TwoFactorAuth)
	assert.True(t, got.ActivityAlerts)
}

func TestChangePassword_Success(t *testing.T) {
	var got api.ChangePasswordRequest
	backend := &mockBackend{
		changePasswordFn: func(ctx context.Context, req api.ChangePasswordRequest) error {
			got = req
			return nil
		},
	}
	srv := newTestServer(t, backend)
	cookies := signIn(t, srv)

	form := url.Values{}
	form.Set("current_password", "old")
	form.Set("new_password", "newpass123")
	form.Set("confirm_password", "newpass123")
	rec := postForm(srv, "/change-password", form, cookies)

	assert.Equal(t, 302, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
	assert.Equal(t, "old", got.CurrentPassword)
	assert.Equal(t, "newpass123", got.NewPassword)
}

func TestChangePassword_MismatchSkipsBackend(t *testing.T) {
	called := false
	backend := &mockBackend{
		changePasswordFn: func(ctx context.Context, req api.ChangePasswordRequest) error {
			called = true
			return nil
		},
	}
	srv := newTestServer(t, backend)
	cookies := signIn(t, srv)

	form := url.Values{}
	form.Set("current_password", "old")
	form.Set("new_password", "one")
	form.Set("confirm_password", "two")
	rec := postForm(srv, "/change-password", form, cookies)

	assert.Equal(t, 302, rec.Code)
	assert.Equal(t, "/change-password", rec.Header().Get("Location"))
	assert.False(t, called)
}
