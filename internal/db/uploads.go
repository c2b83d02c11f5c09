package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"snapfeed/internal/models"
)

const uploadColumns = `uploads.id, uploads.user_id, users.username, uploads.message,
	uploads.file_path, uploads.is_public, uploads.created_at
	FROM uploads
	INNER JOIN users ON uploads.user_id = users.id`

// CreateUpload inserts one upload owned by userID. Empty message and file
// path are stored as NULL. The returned upload has no Username set.
func (db *DB) CreateUpload(ctx context.Context, userID int64, message, filePath string, isPublic bool) (*models.Upload, error) {
	upload := &models.Upload{
		UserID:    userID,
		Message:   message,
		FilePath:  filePath,
		IsPublic:  isPublic,
		CreatedAt: time.Now().UTC(),
	}

	query := db.rebind(`INSERT INTO uploads (user_id, message, file_path, is_public, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := db.QueryRowContext(ctx, query,
		userID, nullString(message), nullString(filePath), isPublic, upload.CreatedAt,
	).Scan(&upload.ID)
	if err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}
	return upload, nil
}

// PublicUploads returns every upload flagged public, oldest first.
func (db *DB) PublicUploads(ctx context.Context) ([]models.Upload, error) {
	query := db.rebind("SELECT " + uploadColumns + " WHERE uploads.is_public = ? ORDER BY uploads.id")
	return db.queryUploads(ctx, query, true)
}

// UploadsByUser returns every upload owned by userID regardless of
// visibility, oldest first.
func (db *DB) UploadsByUser(ctx context.Context, userID int64) ([]models.Upload, error) {
	query := db.rebind("SELECT " + uploadColumns + " WHERE uploads.user_id = ? ORDER BY uploads.id")
	return db.queryUploads(ctx, query, userID)
}

func (db *DB) queryUploads(ctx context.Context, query string, args ...any) ([]models.Upload, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select uploads: %w", err)
	}
	defer rows.Close()

	uploads := []models.Upload{}
	for rows.Next() {
		var (
			upload   models.Upload
			message  sql.NullString
			filePath sql.NullString
		)
		if err := rows.Scan(&upload.ID, &upload.UserID, &upload.Username, &message,
			&filePath, &upload.IsPublic, &upload.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		upload.Message = message.String
		upload.FilePath = filePath.String
		uploads = append(uploads, upload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return uploads, nil
}
