package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Mansoor88-6/timesheet-portal/internal/models"

	"go.uber.org/zap"
)

// APIClient handles communication with the backend API
type APIClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// LoginResult is a backend login translated for the session layer.
// ExpiresAt is zero when the token carries no expiry.
type LoginResult struct {
	User               models.User
	Token              string
	ExpiresAt          time.Time
	MustChangePassword bool
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetProjects lists the projects visible to the token's user
func (c *APIClient) GetProjects(ctx context.Context, token string) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", token, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetTimeEntries lists the user's time entries, newest first as ordered by
// the backend. limit <= 0 leaves the page size to the backend.
func (c *APIClient) GetTimeEntries(ctx context.Context, token string, limit int) ([]models.TimeEntry, error) {
	path := "/api/time-entries"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var entries []models.TimeEntry
	if err := c.do(ctx, http.MethodGet, path, token, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Login exchanges credentials for an access token
func (c *APIClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return c.loginResult(resp)
}

// Logout revokes the token on the backend
func (c *APIClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// ChangePassword replaces the user's password
func (c *APIClient) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	req := models.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", token, req, nil)
}

// GetInvitation looks up a pending invitation by its token
func (c *APIClient) GetInvitation(ctx context.Context, invitationToken string) (*models.Invitation, error) {
	var inv models.Invitation
	path := "/api/invitations/" + url.PathEscape(invitationToken)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptInvitation creates the invited account and signs it in
func (c *APIClient) AcceptInvitation(ctx context.Context, invitationToken string, req models.AcceptInvitationRequest) (*LoginResult, error) {
	var resp models.LoginResponse
	path := "/api/invitations/" + url.PathEscape(invitationToken) + "/accept"
	if err := c.do(ctx, http.MethodPost, path, "", req, &resp); err != nil {
		return nil, err
	}
	return c.loginResult(resp)
}

// HealthCheck checks if the backend is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *APIClient) loginResult(resp models.LoginResponse) (*LoginResult, error) {
	if resp.AccessToken == "" {
		return nil, &BackendError{Message: "login response carries no access token", StatusCode: http.StatusOK}
	}

	expiresAt, mustChange, err := readToken(resp.AccessToken)
	if err != nil {
		// Opaque tokens are allowed; the session falls back to its default TTL
		c.logger.Debug("Access token is not a JWT", zap.Error(err))
	}

	return &LoginResult{
		User:               resp.User,
		Token:              resp.AccessToken,
		ExpiresAt:          expiresAt,
		MustChangePassword: resp.MustChangePassword || mustChange,
	}, nil
}

// do sends a JSON request and decodes a JSON response into out (when
// non-nil). Non-2xx statuses become typed errors.
func (c *APIClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, string(respBody))
		c.logger.Warn("Backend error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return statusError(resp.StatusCode, errMsg)
	}

	c.logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
