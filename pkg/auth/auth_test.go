package auth

import (
	"errors"
	"testing"
	"time"
)

// mapSession is a minimal Session for tests.
type mapSession map[string]any

func (m mapSession) Get(key string) any        { return m[key] }
func (m mapSession) Set(key string, value any) { m[key] = value }
func (m mapSession) Delete(key string)         { delete(m, key) }

func TestStaticAndFunc(t *testing.T) {
	if !Static(true).Allowed() {
		t.Error("Static(true).Allowed() = false")
	}
	if Static(false).Allowed() {
		t.Error("Static(false).Allowed() = true")
	}
	if !Func(func() bool { return true }).Allowed() {
		t.Error("Func(true).Allowed() = false")
	}
	var nilFunc Func
	if nilFunc.Allowed() {
		t.Error("nil Func should not allow")
	}
}

func TestFlag(t *testing.T) {
	var zero Flag
	if zero.Allowed() {
		t.Error("zero Flag should be signed out")
	}

	f := NewFlag(false)
	f.SignIn()
	if !f.Allowed() {
		t.Error("expected signed in after SignIn")
	}
	f.SignOut()
	if f.Allowed() {
		t.Error("expected signed out after SignOut")
	}
}

func TestSessionAuthorizer(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name  string
		setup func(s mapSession)
		want  bool
	}{
		{
			name:  "empty session",
			setup: func(s mapSession) {},
			want:  false,
		},
		{
			name:  "user without expiry",
			setup: func(s mapSession) { Set(s, "alice", time.Time{}) },
			want:  true,
		},
		{
			name:  "user not yet expired",
			setup: func(s mapSession) { Set(s, "alice", now.Add(time.Minute)) },
			want:  true,
		},
		{
			name:  "user expired",
			setup: func(s mapSession) { Set(s, "alice", now.Add(-time.Minute)) },
			want:  false,
		},
		{
			name: "cleared",
			setup: func(s mapSession) {
				Set(s, "alice", time.Time{})
				Clear(s)
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mapSession{}
			tt.setup(s)
			a := SessionAuthorizer{Session: s, Now: clock}
			if got := a.Allowed(); got != tt.want {
				t.Errorf("Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionAuthorizer_NilSession(t *testing.T) {
	var s mapSession
	if (SessionAuthorizer{Session: s}).Allowed() {
		t.Error("nil map session should not allow")
	}
	if (SessionAuthorizer{}).Allowed() {
		t.Error("missing session should not allow")
	}
	// Set and Clear on a nil session are no-ops.
	Set(s, "alice", time.Time{})
	Clear(s)
}

func TestRequire(t *testing.T) {
	if err := Require(Static(true)); err != nil {
		t.Errorf("Require(true) = %v, want nil", err)
	}
	if err := Require(Static(false)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Require(false) = %v, want ErrUnauthorized", err)
	}
	if err := Require(nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Require(nil) = %v, want ErrUnauthorized", err)
	}
}
