package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Don't expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller. It is only ever built from
// server-side session state.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Identity() Identity {
	return Identity{UserID: s.UserID, Username: s.Username}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Upload is a post joined with its owner's username.
type Upload struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Message   string    `json:"message,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

func (u Upload) HasFile() bool {
	return u.FilePath != ""
}
