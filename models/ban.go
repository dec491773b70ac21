package models

import "time"

// Ban is one row of a user's moderation history in a channel. Several rows
// for the same username are expected.
type Ban struct {
	ID        int64      `json:"id"`
	ChannelID int64      `json:"channel_id"`
	UserID    string     `json:"user_id,omitempty"`
	Moderator string     `json:"moderator,omitempty"`
	Username  string     `json:"username"`
	BannedAt  time.Time  `json:"banned_at"`
	Reason    string     `json:"reason"`
	UnbanAt   *time.Time `json:"unban_at,omitempty"`
	Active    bool       `json:"active"`
	Image     string     `json:"image,omitempty"` // path relative to the media root
	Notes     string     `json:"notes,omitempty"`
}

// Expired reports whether an active ban has reached its unban time.
func (b *Ban) Expired(now time.Time) bool {
	return b.Active && b.UnbanAt != nil && !now.Before(*b.UnbanAt)
}

type CreateBanRequest struct {
	ChannelID int64
	UserID    string
	Username  string
	Reason    string
	UnbanAt   *time.Time
	Image     string
	Notes     string
}

// UserBanSummary aggregates the bans of one username.
type UserBanSummary struct {
	Username string `json:"username"`
	Total    int    `json:"total"`
	Active   int    `json:"active"`
	Latest   Ban    `json:"latest"`
}

// SummarizeBans groups newest-first bans by username. Groups keep the order
// in which usernames first appear, so the most recent offender comes first.
func SummarizeBans(bans []Ban) []UserBanSummary {
	index := make(map[string]int)
	var out []UserBanSummary
	for _, b := range bans {
		i, ok := index[b.Username]
		if !ok {
			index[b.Username] = len(out)
			out = append(out, UserBanSummary{Username: b.Username, Latest: b})
			i = len(out) - 1
		}
		out[i].Total++
		if b.Active {
			out[i].Active++
		}
	}
	return out
}

// BanCounts returns total and active counts.
func BanCounts(bans []Ban) (total, active int) {
	for _, b := range bans {
		if b.Active {
			active++
		}
	}
	return len(bans), active
}
