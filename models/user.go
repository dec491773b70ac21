package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the server-side state behind the session cookie.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	ActiveChannelID int64     `json:"active_channel_id,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
}
