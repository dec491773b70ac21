// Package report builds the ban-history report of one user in one channel.
//
// Build gathers the content and Render lays it out as a PDF. The same bans
// and generation time always produce the same report.
package report

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"modpanel/models"
)

// ErrNoRecords is returned when there is nothing to report on.
var ErrNoRecords = errors.New("no ban records for user")

type Summary struct {
	Total          int
	Active         int
	Completed      int
	RepeatOffender bool
}

type Report struct {
	ChannelName string
	Streamer    string
	Username    string
	GeneratedAt time.Time
	Summary     Summary
	Entries     []models.Ban // newest first
}

func Build(channel *models.Channel, username string, bans []models.Ban, generatedAt time.Time) (*Report, error) {
	if len(bans) == 0 {
		return nil, ErrNoRecords
	}

	entries := make([]models.Ban, len(bans))
	copy(entries, bans)
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].BannedAt.Equal(entries[j].BannedAt) {
			return entries[i].BannedAt.After(entries[j].BannedAt)
		}
		return entries[i].ID > entries[j].ID
	})

	total, active := models.BanCounts(entries)
	return &Report{
		ChannelName: channel.Name,
		Streamer:    channel.Streamer,
		Username:    username,
		GeneratedAt: generatedAt,
		Summary: Summary{
			Total:          total,
			Active:         active,
			Completed:      total - active,
			RepeatOffender: total > 1,
		},
		Entries: entries,
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename encodes user, channel and generation time.
func (r *Report) Filename() string {
	return fmt.Sprintf("reporte_%s_%s_%s.pdf",
		unsafeFilenameChars.ReplaceAllString(r.Username, "_"),
		unsafeFilenameChars.ReplaceAllString(r.ChannelName, "_"),
		r.GeneratedAt.Format("20060102_150405"),
	)
}

func statusLabel(b models.Ban) string {
	if b.Active {
		return "Activo"
	}
	return "Cumplido"
}
