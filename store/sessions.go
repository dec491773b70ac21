package store

import (
	"context"
	"database/sql"

	"modpanel/models"
)

// LoadSession returns the stored session, expired or not.
func (s *Store) LoadSession(ctx context.Context, id string) (*models.Session, error) {
	sess := &models.Session{}
	var userID sql.NullString
	var channelID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, active_channel_id, expires_at FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &userID, &channelID, &sess.ExpiresAt)
	if err != nil {
		return nil, notFound(err)
	}
	sess.UserID = userID.String
	sess.ActiveChannelID = channelID.Int64
	return sess, nil
}

func (s *Store) SaveSession(ctx context.Context, sess *models.Session) error {
	var channelID interface{}
	if sess.ActiveChannelID != 0 {
		channelID = sess.ActiveChannelID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, active_channel_id, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			active_channel_id = excluded.active_channel_id,
			expires_at = excluded.expires_at
	`, sess.ID, nullString(sess.UserID), channelID, sess.ExpiresAt.UTC())
	return err
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}
