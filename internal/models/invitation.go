package models

import "time"

// Invitation is an onboarding link sent by an administrator.
type Invitation struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	InvitedBy string    `json:"invited_by,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AcceptInvitationRequest struct {
	FullName string `json:"full_name"`
	Password string `json:"password"`
}
