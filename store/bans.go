package store

import (
	"database/sql"
	"strings"

	"modpanel/models"
)

const banSelect = `
	SELECT b.id, b.channel_id, b.user_id, COALESCE(u.username, ''), b.username, b.banned_at, b.reason, b.unban_at, b.active, b.image, b.notes
	FROM bans b
	LEFT JOIN users u ON u.id = b.user_id`

const banOrder = ` ORDER BY b.banned_at DESC, b.id DESC`

func (s *Store) CreateBan(req models.CreateBanRequest) (*models.Ban, error) {
	res, err := s.db.Exec(`
		INSERT INTO bans (channel_id, user_id, username, banned_at, reason, unban_at, active, image, notes)
		VALUES (?, ?, ?, ?, ?, ?, TRUE, ?, ?)
	`, req.ChannelID, nullString(req.UserID), req.Username, s.timestamp(), req.Reason, nullTime(req.UnbanAt), nullString(req.Image), req.Notes)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetBan(id)
}

func (s *Store) GetBan(id int64) (*models.Ban, error) {
	bans, err := s.queryBans(`WHERE b.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := s.expireBans(bans); err != nil {
		return nil, err
	}
	if len(bans) == 0 {
		return nil, ErrNotFound
	}
	return &bans[0], nil
}

// ListActiveBans returns bans still in force in the channel, newest first.
func (s *Store) ListActiveBans(channelID int64) ([]models.Ban, error) {
	bans, err := s.queryBans(`WHERE b.channel_id = ? AND b.active = TRUE`+banOrder, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.expireBans(bans); err != nil {
		return nil, err
	}

	active := bans[:0]
	for _, b := range bans {
		if b.Active {
			active = append(active, b)
		}
	}
	return active, nil
}

// ListBansForUser returns the full history of one username in the channel,
// newest first.
func (s *Store) ListBansForUser(channelID int64, username string) ([]models.Ban, error) {
	bans, err := s.queryBans(`WHERE b.channel_id = ? AND b.username = ?`+banOrder, channelID, username)
	if err != nil {
		return nil, err
	}
	return bans, s.expireBans(bans)
}

// SearchBans returns bans whose username contains query, case-insensitively.
// An empty query matches nothing.
func (s *Store) SearchBans(channelID int64, query string) ([]models.Ban, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	bans, err := s.queryBans(`WHERE b.channel_id = ? AND unicode_lower(b.username) LIKE ? ESCAPE '\'`+banOrder, channelID, pattern)
	if err != nil {
		return nil, err
	}
	return bans, s.expireBans(bans)
}

// DeactivateBans lifts the given bans of one channel. Ids from other
// channels are ignored.
func (s *Store) DeactivateBans(channelID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders, args := inClause(ids)
	args = append([]interface{}{channelID}, args...)
	res, err := s.db.Exec(`
		UPDATE bans SET active = FALSE
		WHERE channel_id = ? AND active = TRUE AND id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) queryBans(where string, args ...interface{}) ([]models.Ban, error) {
	rows, err := s.db.Query(banSelect+" "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var b models.Ban
		var userID, image sql.NullString
		var unbanAt sql.NullTime
		err := rows.Scan(&b.ID, &b.ChannelID, &userID, &b.Moderator, &b.Username, &b.BannedAt, &b.Reason, &unbanAt, &b.Active, &image, &b.Notes)
		if err != nil {
			return nil, err
		}
		b.UserID = userID.String
		b.Image = image.String
		if unbanAt.Valid {
			t := unbanAt.Time
			b.UnbanAt = &t
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}

// expireBans flips bans past their unban time to inactive, in memory and in
// the database. The flip only ever goes from active to inactive, so racing
// readers write the same result.
func (s *Store) expireBans(bans []models.Ban) error {
	now := s.now()
	var expired []int64
	for i := range bans {
		if bans[i].Expired(now) {
			bans[i].Active = false
			expired = append(expired, bans[i].ID)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	placeholders, args := inClause(expired)
	_, err := s.db.Exec(`UPDATE bans SET active = FALSE WHERE active = TRUE AND id IN (`+placeholders+`)`, args...)
	return err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
