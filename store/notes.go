package store

import (
	"database/sql"

	"modpanel/models"
)

const noteSelect = `
	SELECT n.id, n.channel_id, n.user_id, COALESCE(u.username, ''), n.type, n.title, n.body, n.tag, n.important, n.created_at, n.updated_at
	FROM notes n
	LEFT JOIN users u ON u.id = n.user_id`

func (s *Store) CreateNote(req models.CreateNoteRequest) (*models.Note, error) {
	noteType := req.Type
	if noteType == "" {
		noteType = models.NoteGeneral
	}
	now := s.timestamp()

	res, err := s.db.Exec(`
		INSERT INTO notes (channel_id, user_id, type, title, body, tag, important, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.ChannelID, nullString(req.UserID), noteType, req.Title, req.Body, req.Tag, req.Important, now, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetNote(id)
}

func (s *Store) GetNote(id int64) (*models.Note, error) {
	rows, err := s.queryNotes(`WHERE n.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListNotes returns the channel's notes, newest first.
func (s *Store) ListNotes(channelID int64) ([]models.Note, error) {
	return s.queryNotes(`WHERE n.channel_id = ? ORDER BY n.created_at DESC, n.id DESC`, channelID)
}

func (s *Store) queryNotes(where string, args ...interface{}) ([]models.Note, error) {
	rows, err := s.db.Query(noteSelect+" "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var userID sql.NullString
		err := rows.Scan(&n.ID, &n.ChannelID, &userID, &n.Author, &n.Type, &n.Title, &n.Body, &n.Tag, &n.Important, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, err
		}
		n.UserID = userID.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
