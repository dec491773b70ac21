// Package channelctx decides which channel a request works on.
//
// The choice lives in the caller's session. A session that points at a
// missing or inactive channel falls back to the first active channel by
// name, and that fallback is written back to the session.
package channelctx

import (
	"context"
	"errors"

	"modpanel/models"
	"modpanel/store"
)

var (
	// ErrNoChannel means no active channel exists at all.
	ErrNoChannel = errors.New("no active channel")
	// ErrChannelNotFound means the requested channel is missing or inactive.
	ErrChannelNotFound = errors.New("channel not found")
)

// ChannelSource is the part of the store the resolver reads.
type ChannelSource interface {
	GetActiveChannel(id int64) (*models.Channel, error)
	FirstActiveChannel() (*models.Channel, error)
}

// SessionSaver persists session changes.
type SessionSaver interface {
	Save(ctx context.Context, sess *models.Session) error
}

type Resolver struct {
	channels ChannelSource
	sessions SessionSaver
}

func NewResolver(channels ChannelSource, sessions SessionSaver) *Resolver {
	return &Resolver{channels: channels, sessions: sessions}
}

// Resolve returns the session's active channel, or ErrNoChannel.
func (r *Resolver) Resolve(ctx context.Context, sess *models.Session) (*models.Channel, error) {
	if sess.ActiveChannelID != 0 {
		channel, err := r.channels.GetActiveChannel(sess.ActiveChannelID)
		if err == nil {
			return channel, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	channel, err := r.channels.FirstActiveChannel()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoChannel
		}
		return nil, err
	}

	if sess.ActiveChannelID != channel.ID {
		sess.ActiveChannelID = channel.ID
		if err := r.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return channel, nil
}

// Switch makes channelID the session's active channel.
func (r *Resolver) Switch(ctx context.Context, sess *models.Session, channelID int64) (*models.Channel, error) {
	channel, err := r.channels.GetActiveChannel(channelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	sess.ActiveChannelID = channel.ID
	if err := r.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return channel, nil
}
