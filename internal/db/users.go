package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"snapfeed/internal/models"
)

// CreateUser inserts a user. A taken username yields ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	query := db.rebind("INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id")
	err := db.QueryRowContext(ctx, query, username, passwordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := db.rebind("SELECT id, username, password_hash, created_at FROM users WHERE username = ?")

	user := &models.User{}
	err := db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}
