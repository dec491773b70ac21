package store

import (
	"database/sql"

	"modpanel/models"
)

func (s *Store) CreateCommand(req models.CreateCommandRequest) (*models.Command, error) {
	level := req.MinLevel
	if level == "" {
		level = models.LevelEveryone
	}
	now := s.timestamp()

	res, err := s.db.Exec(`
		INSERT INTO commands (channel_id, name, meaning, min_level, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.ChannelID, req.Name, req.Meaning, level, req.Active, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Command{
		ID:        id,
		ChannelID: req.ChannelID,
		Name:      req.Name,
		Meaning:   req.Meaning,
		MinLevel:  level,
		Active:    req.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CommandExists reports whether the channel already has a command with this name.
func (s *Store) CommandExists(channelID int64, name string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM commands WHERE channel_id = ? AND name = ?", channelID, name).Scan(&count)
	return count > 0, err
}

// ListCommands returns the channel's commands ordered by name.
func (s *Store) ListCommands(channelID int64, activeOnly bool) ([]models.Command, error) {
	query := `
		SELECT id, channel_id, name, meaning, min_level, active, created_at, updated_at
		FROM commands WHERE channel_id = ?`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.Query(query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []models.Command
	for rows.Next() {
		var cmd models.Command
		var channel sql.NullInt64
		err := rows.Scan(&cmd.ID, &channel, &cmd.Name, &cmd.Meaning, &cmd.MinLevel, &cmd.Active, &cmd.CreatedAt, &cmd.UpdatedAt)
		if err != nil {
			return nil, err
		}
		cmd.ChannelID = channel.Int64
		commands = append(commands, cmd)
	}
	return commands, rows.Err()
}
