package auth

import (
	"testing"
	"time"

	"drivequest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCredentials(t *testing.T) {
	creds := NewStaticCredentials(nil)

	tests := []struct {
		username, password string
		want               domain.Role
	}{
		{"TeenLogin", "aa123", domain.RoleStudent},
		{"ParentLogin", "aa1234", domain.RoleParent},
		{"ParentLogin", "aa123", domain.RoleRejected},
		{"teenlogin", "aa123", domain.RoleRejected},
		{"", "", domain.RoleRejected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, creds.Check(tt.username, tt.password), "%s/%s", tt.username, tt.password)
	}
}

func TestAuthenticatorResolvesAfterDelay(t *testing.T) {
	var delays []time.Duration
	var pending []func()
	timer := func(d time.Duration, fn func()) {
		delays = append(delays, d)
		pending = append(pending, fn)
	}

	var posted int
	dispatch := func(fn func()) bool {
		posted++
		fn()
		return true
	}

	a := NewAuthenticator(NewStaticCredentials(nil), DefaultDelay, WithTimer(timer), WithDispatcher(dispatch))

	var got []domain.Role
	a.Login("TeenLogin", "aa123", func(r domain.Role) { got = append(got, r) })
	a.Login("nobody", "x", func(r domain.Role) { got = append(got, r) })

	assert.Empty(t, got, "nothing resolves before the timer fires")
	require.Len(t, pending, 2)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)

	pending[1]()
	pending[0]()
	assert.Equal(t, []domain.Role{domain.RoleRejected, domain.RoleStudent}, got)
	assert.Equal(t, 2, posted)
}

func TestAuthenticatorWithRealTimer(t *testing.T) {
	a := NewAuthenticator(NewStaticCredentials(nil), time.Millisecond)

	done := make(chan domain.Role, 1)
	a.Login("ParentLogin", "aa1234", func(r domain.Role) { done <- r })

	select {
	case role := <-done:
		assert.Equal(t, domain.RoleParent, role)
	case <-time.After(time.Second):
		t.Fatal("login never resolved")
	}
}
