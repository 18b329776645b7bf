// Package session holds the authenticated state of a portal visitor and
// the server-side store behind the session cookie.
package session

import (
	"time"

	"Mansoor88-6/timesheet-portal/internal/models"
)

// State is the per-visitor application state. It is a value: transitions
// return a new State and never mutate the receiver.
type State struct {
	User               *models.User
	Token              string
	ExpiresAt          time.Time
	MustChangePassword bool
}

// Login returns the state of a freshly authenticated visitor.
func (s State) Login(user models.User, token string, expiresAt time.Time, mustChangePassword bool) State {
	u := user
	return State{
		User:               &u,
		Token:              token,
		ExpiresAt:          expiresAt,
		MustChangePassword: mustChangePassword,
	}
}

// Logout returns the anonymous state.
func (s State) Logout() State {
	return State{}
}

// PasswordChanged clears the forced password change flag.
func (s State) PasswordChanged() State {
	next := s
	next.MustChangePassword = false
	return next
}

// Authenticated reports whether the state carries a usable session at now.
func (s State) Authenticated(now time.Time) bool {
	if s.User == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Subject identifies the user for cache partitioning. Empty when anonymous.
func (s State) Subject() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// HasRole reports whether the user holds role.
func (s State) HasRole(role models.Role) bool {
	return s.User != nil && s.User.Role == role
}
