package auth

import (
	"errors"
	"reflect"
	"sync/atomic"
	"time"
)

// ErrUnauthorized is returned when an upload is attempted by a user who is
// not signed in.
var ErrUnauthorized = errors.New("upload: not signed in")

// Authorizer answers whether the current user may upload.
// It is consulted on every event, so the answer may change over the
// lifetime of a widget (sign in, sign out).
type Authorizer interface {
	Allowed() bool
}

// Func adapts a function to the Authorizer interface.
type Func func() bool

// Allowed calls fn.
func (fn Func) Allowed() bool {
	if fn == nil {
		return false
	}
	return fn()
}

// Static is an Authorizer with a fixed answer.
type Static bool

// Allowed returns the fixed answer.
func (s Static) Allowed() bool {
	return bool(s)
}

// Flag is a concurrency-safe, toggleable Authorizer.
// The zero value is signed out.
type Flag struct {
	signedIn atomic.Bool
}

// NewFlag creates a Flag with the given initial state.
func NewFlag(signedIn bool) *Flag {
	f := &Flag{}
	f.signedIn.Store(signedIn)
	return f
}

// Allowed reports whether the flag is signed in.
func (f *Flag) Allowed() bool {
	return f.signedIn.Load()
}

// SignIn marks the flag signed in.
func (f *Flag) SignIn() {
	f.signedIn.Store(true)
}

// SignOut marks the flag signed out.
func (f *Flag) SignOut() {
	f.signedIn.Store(false)
}

// Session provides minimal session access needed by auth helpers.
type Session interface {
	Get(key string) any
	Set(key string, value any)
	Delete(key string)
}

// Session keys written by Set and read by SessionAuthorizer.
const (
	// SessionKey is the standard session key for the authenticated user.
	SessionKey = "dropzone:auth:user"

	// SessionKeyExpiryUnixMs is the hard expiry timestamp in unix
	// milliseconds. Absent or zero means no expiry.
	SessionKeyExpiryUnixMs = "dropzone:auth:expiry_unix_ms"
)

// Set stores the authenticated user in the session.
// A zero expiresAt means the sign-in does not expire.
func Set(session Session, user any, expiresAt time.Time) {
	if isNilSession(session) {
		return
	}
	session.Set(SessionKey, user)
	if expiresAt.IsZero() {
		session.Delete(SessionKeyExpiryUnixMs)
		return
	}
	session.Set(SessionKeyExpiryUnixMs, expiresAt.UnixMilli())
}

// Clear removes the authenticated user from the session.
func Clear(session Session) {
	if isNilSession(session) {
		return
	}
	session.Delete(SessionKey)
	session.Delete(SessionKeyExpiryUnixMs)
}

// SessionAuthorizer allows uploads while the session holds an unexpired user.
type SessionAuthorizer struct {
	Session Session

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Allowed implements Authorizer.
func (a SessionAuthorizer) Allowed() bool {
	if isNilSession(a.Session) {
		return false
	}
	if a.Session.Get(SessionKey) == nil {
		return false
	}

	expiry, ok := a.Session.Get(SessionKeyExpiryUnixMs).(int64)
	if !ok || expiry == 0 {
		return true
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return now().UnixMilli() < expiry
}

// Require returns ErrUnauthorized unless a allows uploads.
// A nil Authorizer never allows.
func Require(a Authorizer) error {
	if a == nil || !a.Allowed() {
		return ErrUnauthorized
	}
	return nil
}

func isNilSession(session Session) bool {
	if session == nil {
		return true
	}
	v := reflect.ValueOf(session)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.Interface, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
