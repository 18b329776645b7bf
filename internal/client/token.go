package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type tokenClaims struct {
	MustChangePassword bool `json:"must_change_password"`
	jwt.RegisteredClaims
}

// readToken extracts the expiry and forced change flag from an access
// token. The signature is not checked here: the portal never trusts the
// token, it only forwards it, and the backend verifies it on every call.
func readToken(raw string) (expiresAt time.Time, mustChange bool, err error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return expiresAt, claims.MustChangePassword, nil
}
