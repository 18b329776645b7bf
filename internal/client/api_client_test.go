package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Mansoor88-6/timesheet-portal/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL, 5*time.Second, zap.NewNop())
}

func signedToken(t *testing.T, exp time.Time, mustChange bool) string {
	t.Helper()
	claims := tokenClaims{
		MustChangePassword: mustChange,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return raw
}

func TestGetProjects_SendsBearerAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Portal","status":"in_progress","progress":40},{"id":2,"name":"Audit","status":"mystery"}]`))
	})

	projects, err := c.GetProjects(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Portal", projects[0].Name)
	assert.Equal(t, models.ProjectInProgress, projects[0].Status)
	assert.Equal(t, models.ProjectStatus("mystery"), projects[1].Status)
}

func TestGetTimeEntries_PassesLimitAndKeepsOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/time-entries", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"id":9,"date":"2024-01-09","hours":1,"status":"pending"},{"id":4,"date":"2024-01-04","hours":8,"status":"approved"}]`))
	})

	entries, err := c.GetTimeEntries(context.Background(), "tok", 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(9), entries[0].ID)
	assert.Equal(t, int64(4), entries[1].ID)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, IsAuthError},
		{http.StatusForbidden, IsAuthError},
		{http.StatusNotFound, IsNotFound},
		{http.StatusBadRequest, IsBadRequest},
		{http.StatusTooManyRequests, func(err error) bool { _, ok := err.(*RateLimitError); return ok }},
		{http.StatusBadGateway, func(err error) bool { _, ok := err.(*BackendError); return ok }},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})
			_, err := c.GetProjects(context.Background(), "tok")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type %T", err)
		})
	}
}

func TestLogin_ReadsTokenClaims(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := signedToken(t, exp, true)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)

		json.NewEncoder(w).Encode(models.LoginResponse{
			AccessToken: token,
			User:        models.User{ID: "u-1", Email: req.Email, Role: models.RoleEmployee},
		})
	})

	res, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.User.ID)
	assert.Equal(t, token, res.Token)
	assert.True(t, exp.Equal(res.ExpiresAt))
	assert.True(t, res.MustChangePassword)
}

func TestLogin_OpaqueTokenHasNoExpiry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"opaque","user":{"id":"u-1"},"must_change_password":true}`))
	})

	res, err := c.Login(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, res.ExpiresAt.IsZero())
	assert.True(t, res.MustChangePassword)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Login(context.Background(), "a", "b")
	assert.True(t, IsAuthError(err))
}

func TestLogin_MissingTokenIsBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"u-1"}}`))
	})

	_, err := c.Login(context.Background(), "a", "b")
	var be *BackendError
	assert.ErrorAs(t, err, &be)
}

func TestInvitation_EscapesTokenInPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/invitations/a%2Fb", r.URL.EscapedPath())
		w.Write([]byte(`{"token":"a/b","email":"new@example.com","role":"employee"}`))
	})

	inv, err := c.GetInvitation(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", inv.Email)
}

func TestChangePassword_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.ChangePasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "new-secret", req.NewPassword)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.ChangePassword(context.Background(), "tok", "old", "new-secret"))
}

func TestHealthCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, c.HealthCheck(context.Background()))
}
