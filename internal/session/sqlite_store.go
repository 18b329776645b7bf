package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Mansoor88-6/timesheet-portal/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (State, error) {
	query := `
		SELECT user_data, token, expires_at, must_change_password
		FROM sessions
		WHERE id = ?
	`

	var (
		userData   string
		token      string
		expiresAt  int64
		mustChange bool
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&userData, &token, &expiresAt, &mustChange)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to get session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		return State{}, fmt.Errorf("failed to decode session user: %w", err)
	}

	state := State{
		User:               &user,
		Token:              token,
		MustChangePassword: mustChange,
	}
	if expiresAt > 0 {
		state.ExpiresAt = time.Unix(expiresAt, 0)
	}
	return state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, state State) error {
	if state.User == nil {
		return fmt.Errorf("cannot save anonymous session")
	}

	userData, err := json.Marshal(state.User)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}

	var expiresAt int64
	if !state.ExpiresAt.IsZero() {
		expiresAt = state.ExpiresAt.Unix()
	}

	query := `
		INSERT INTO sessions (id, user_data, token, expires_at, must_change_password)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_data = excluded.user_data,
			token = excluded.token,
			expires_at = excluded.expires_at,
			must_change_password = excluded.must_change_password,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, id, string(userData), state.Token, expiresAt, state.MustChangePassword); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is before now. Sessions saved
// without an expiry are kept.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at > 0 AND expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
