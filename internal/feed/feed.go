// Package feed decides which uploads a caller may see.
//
// Anonymous callers only ever reach PublicFeed. Everything scoped to a user
// takes a models.Identity, which handlers obtain from the session middleware
// and never from request input.
package feed

import (
	"context"

	"snapfeed/internal/models"
)

type uploadDB interface {
	CreateUpload(ctx context.Context, userID int64, message, filePath string, isPublic bool) (*models.Upload, error)
	PublicUploads(ctx context.Context) ([]models.Upload, error)
	UploadsByUser(ctx context.Context, userID int64) ([]models.Upload, error)
}

type Service struct {
	db uploadDB
}

func NewService(database uploadDB) *Service {
	return &Service{db: database}
}

// PublicFeed returns every public upload, oldest first.
func (s *Service) PublicFeed(ctx context.Context) ([]models.Upload, error) {
	return s.db.PublicUploads(ctx)
}

// Dashboard returns all of the caller's own uploads, public and private.
func (s *Service) Dashboard(ctx context.Context, owner models.Identity) ([]models.Upload, error) {
	return s.db.UploadsByUser(ctx, owner.UserID)
}

// Create stores a new upload owned by the caller. Message and fileRef may
// both be empty.
func (s *Service) Create(ctx context.Context, owner models.Identity, message, fileRef string, isPublic bool) (*models.Upload, error) {
	upload, err := s.db.CreateUpload(ctx, owner.UserID, message, fileRef, isPublic)
	if err != nil {
		return nil, err
	}
	upload.Username = owner.Username
	return upload, nil
}
