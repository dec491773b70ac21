package models

import "time"

const DefaultChannelColor = "#9146FF"

type Channel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Streamer    string    `json:"streamer"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Color       string    `json:"color"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`

	// Denormalized, refreshed only by an explicit stats recomputation.
	TotalCommands   int `json:"total_commands"`
	TotalActiveBans int `json:"total_active_bans"`
}

type CreateChannelRequest struct {
	Name        string
	Streamer    string
	Description string
	URL         string
	Color       string
	Active      bool
}
