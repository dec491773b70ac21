package store

import "modpanel/models"

const channelColumns = `id, name, streamer, description, url, color, active, created_at, total_commands, total_active_bans`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	c := &models.Channel{}
	err := row.Scan(&c.ID, &c.Name, &c.Streamer, &c.Description, &c.URL, &c.Color, &c.Active, &c.CreatedAt, &c.TotalCommands, &c.TotalActiveBans)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) CreateChannel(req models.CreateChannelRequest) (*models.Channel, error) {
	color := req.Color
	if color == "" {
		color = models.DefaultChannelColor
	}

	channel := &models.Channel{
		Name:        req.Name,
		Streamer:    req.Streamer,
		Description: req.Description,
		URL:         req.URL,
		Color:       color,
		Active:      req.Active,
		CreatedAt:   s.timestamp(),
	}

	res, err := s.db.Exec(`
		INSERT INTO channels (name, streamer, description, url, color, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, channel.Name, channel.Streamer, channel.Description, channel.URL, channel.Color, channel.Active, channel.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	channel.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *Store) GetChannel(id int64) (*models.Channel, error) {
	c, err := scanChannel(s.db.QueryRow(`SELECT `+channelColumns+` FROM channels WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// GetActiveChannel only returns channels that are marked active.
func (s *Store) GetActiveChannel(id int64) (*models.Channel, error) {
	c, err := scanChannel(s.db.QueryRow(`SELECT `+channelColumns+` FROM channels WHERE id = ? AND active = TRUE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// FirstActiveChannel returns the active channel that sorts first by name.
func (s *Store) FirstActiveChannel() (*models.Channel, error) {
	c, err := scanChannel(s.db.QueryRow(`SELECT ` + channelColumns + ` FROM channels WHERE active = TRUE ORDER BY name, id LIMIT 1`))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *Store) ListActiveChannels() ([]models.Channel, error) {
	return s.queryChannels(`SELECT ` + channelColumns + ` FROM channels WHERE active = TRUE ORDER BY name, id`)
}

// ListChannels returns every channel, inactive ones included.
func (s *Store) ListChannels() ([]models.Channel, error) {
	return s.queryChannels(`SELECT ` + channelColumns + ` FROM channels ORDER BY name, id`)
}

func (s *Store) queryChannels(query string, args ...interface{}) ([]models.Channel, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *c)
	}
	return channels, rows.Err()
}

func (s *Store) SetChannelActive(id int64, active bool) error {
	res, err := s.db.Exec("UPDATE channels SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChannel removes the channel together with its commands, notes and bans.
func (s *Store) DeleteChannel(id int64) error {
	res, err := s.db.Exec("DELETE FROM channels WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeStats refreshes the denormalized counters from the live rows.
// Bans past their unban time are expired first so they are not counted.
func (s *Store) RecomputeStats(id int64) (*models.Channel, error) {
	if _, err := s.GetChannel(id); err != nil {
		return nil, err
	}

	pending, err := s.queryBans(`WHERE b.channel_id = ? AND b.active = TRUE AND b.unban_at IS NOT NULL`, id)
	if err != nil {
		return nil, err
	}
	if err := s.expireBans(pending); err != nil {
		return nil, err
	}

	var commands, activeBans int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM commands WHERE channel_id = ?", id).Scan(&commands); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bans WHERE channel_id = ? AND active = TRUE", id).Scan(&activeBans); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		UPDATE channels SET total_commands = ?, total_active_bans = ? WHERE id = ?
	`, commands, activeBans, id)
	if err != nil {
		return nil, err
	}

	return s.GetChannel(id)
}
