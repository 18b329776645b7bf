package session

import (
	"testing"
	"time"

	"Mansoor88-6/timesheet-portal/internal/models"

	"github.com/stretchr/testify/assert"
)

var alice = models.User{ID: "u-1", Email: "alice@example.com", FullName: "Alice", Role: models.RoleEmployee}

func TestState_LoginDoesNotMutateReceiver(t *testing.T) {
	var anon State
	expires := time.Now().Add(time.Hour)

	next := anon.Login(alice, "tok", expires, true)

	assert.Nil(t, anon.User)
	assert.Equal(t, "u-1", next.Subject())
	assert.True(t, next.MustChangePassword)
	assert.True(t, next.Authenticated(time.Now()))
}

func TestState_LogoutReturnsAnonymous(t *testing.T) {
	st := State{}.Login(alice, "tok", time.Time{}, false)

	out := st.Logout()

	assert.False(t, out.Authenticated(time.Now()))
	assert.Empty(t, out.Subject())
	assert.NotNil(t, st.User)
}

func TestState_PasswordChangedKeepsIdentity(t *testing.T) {
	st := State{}.Login(alice, "tok", time.Time{}, true)

	out := st.PasswordChanged()

	assert.False(t, out.MustChangePassword)
	assert.True(t, st.MustChangePassword)
	assert.Equal(t, st.User, out.User)
	assert.Equal(t, "tok", out.Token)
}

func TestState_Authenticated(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"anonymous", State{}, false},
		{"no token", State{User: &alice}, false},
		{"no expiry", State{User: &alice, Token: "t"}, true},
		{"future expiry", State{User: &alice, Token: "t", ExpiresAt: now.Add(time.Minute)}, true},
		{"expired", State{User: &alice, Token: "t", ExpiresAt: now.Add(-time.Minute)}, false},
		{"expires exactly now", State{User: &alice, Token: "t", ExpiresAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Authenticated(now))
		})
	}
}

func TestState_HasRole(t *testing.T) {
	admin := models.User{ID: "u-2", Role: models.RoleAdmin}
	st := State{}.Login(admin, "tok", time.Time{}, false)

	assert.True(t, st.HasRole(models.RoleAdmin))
	assert.False(t, State{}.HasRole(models.RoleAdmin))
}
