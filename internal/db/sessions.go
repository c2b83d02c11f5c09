package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"snapfeed/internal/models"
)

func (db *DB) CreateSession(ctx context.Context, session *models.Session) error {
	query := db.rebind("INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)")
	if _, err := db.ExecContext(ctx, query, session.ID, session.UserID, session.ExpiresAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession loads a session joined with its username. Expiry is left to the
// caller.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := db.rebind(`SELECT sessions.id, sessions.user_id, users.username, sessions.expires_at
		FROM sessions
		INNER JOIN users ON sessions.user_id = users.id
		WHERE sessions.id = ?`)

	session := &models.Session{}
	err := db.QueryRowContext(ctx, query, sessionID).Scan(&session.ID, &session.UserID, &session.Username, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session. Deleting an unknown id is not an error.
func (db *DB) DeleteSession(ctx context.Context, sessionID string) error {
	query := db.rebind("DELETE FROM sessions WHERE id = ?")
	if _, err := db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired at or before now
// and reports how many were removed.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query := db.rebind("DELETE FROM sessions WHERE expires_at <= ?")
	res, err := db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
