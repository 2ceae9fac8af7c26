// Package session is the single authority for the admin's credential and
// profile. State lives in an encrypted cookie so it survives restarts; the
// persisted record carries exactly the token, the profile, and the derived
// authenticated flag. Transient state is never written, so rehydration
// cannot resurrect an in-flight "loading" condition.
package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/miin000/minisocial-admin/internal/api"
)

const (
	sessionName    = "minisocial-admin-session"
	sessionKeyAuth = "auth"

	flashName = "minisocial-admin-flash"
)

// Session is the authenticated identity bound to a browser.
type Session struct {
	Token         string       `json:"token"`
	Profile       *api.Profile `json:"profile,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

// Load parses the persisted session from the request cookie. Any decode or
// parse failure degrades to the empty, unauthenticated session; malformed
// state must never surface as an error. Authenticated is derived from the
// presence of a non-empty token, not trusted from the blob.
func (s *Store) Load(r *http.Request) Session {
	ck, err := s.cookies.Get(r, sessionName)
	if err != nil {
		return Session{}
	}

	raw, ok := ck.Values[sessionKeyAuth].(string)
	if !ok {
		return Session{}
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}
	}

	sess.Authenticated = sess.Token != ""
	if !sess.Authenticated {
		// No credential means no session, whatever else the blob claims.
		return Session{}
	}
	return sess
}

// save persists the session record, overwriting any previous one.
func (s *Store) save(w http.ResponseWriter, r *http.Request, sess Session) error {
	ck, err := s.cookies.Get(r, sessionName)
	if err != nil {
		// Get returns a fresh session alongside decode errors; a corrupt
		// cookie is overwritten, not fatal.
		ck, err = s.cookies.New(r, sessionName)
		if err != nil {
			return err
		}
	}

	blob, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ck.Values[sessionKeyAuth] = string(blob)
	return ck.Save(r, w)
}

// reset expires the session cookie immediately.
func (s *Store) reset(w http.ResponseWriter, r *http.Request) {
	ck, err := s.cookies.Get(r, sessionName)
	if err != nil {
		ck, err = s.cookies.New(r, sessionName)
		if err != nil {
			return
		}
	}
	delete(ck.Values, sessionKeyAuth)
	ck.Options.MaxAge = -1
	_ = ck.Save(r, w)
}

type contextKey struct{}

// NewContext returns ctx carrying the session snapshot.
func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session snapshot stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}

// Credential reads the bearer token from the context snapshot. It is the
// CredentialProvider handed to the backend client, so every outgoing call
// sees the state of the request it belongs to.
func Credential(ctx context.Context) string {
	sess, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return sess.Token
}
