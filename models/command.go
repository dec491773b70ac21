package models

import "time"

// PermissionLevel is the minimum chat role allowed to run a command.
type PermissionLevel string

const (
	LevelEveryone  PermissionLevel = "EVERYONE"
	LevelVIPs      PermissionLevel = "VIPS"
	LevelMods      PermissionLevel = "MODS"
	LevelSuperMods PermissionLevel = "SUPERMODS"
	LevelStreamer  PermissionLevel = "STREAMER"
)

// PermissionLevels lists every level from least to most privileged.
var PermissionLevels = []PermissionLevel{LevelEveryone, LevelVIPs, LevelMods, LevelSuperMods, LevelStreamer}

// Rank orders levels, -1 for unknown values.
func (l PermissionLevel) Rank() int {
	for i, lvl := range PermissionLevels {
		if lvl == l {
			return i
		}
	}
	return -1
}

func (l PermissionLevel) Label() string {
	switch l {
	case LevelEveryone:
		return "Everyone"
	case LevelVIPs:
		return "Vips"
	case LevelMods:
		return "Mods"
	case LevelSuperMods:
		return "SuperMods"
	case LevelStreamer:
		return "Streamer"
	default:
		return string(l)
	}
}

type Command struct {
	ID        int64           `json:"id"`
	ChannelID int64           `json:"channel_id"`
	Name      string          `json:"name"`
	Meaning   string          `json:"meaning"`
	MinLevel  PermissionLevel `json:"min_level"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CreateCommandRequest struct {
	ChannelID int64
	Name      string
	Meaning   string
	MinLevel  PermissionLevel
	Active    bool
}
