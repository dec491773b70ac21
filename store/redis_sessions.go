package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"modpanel/models"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps sessions in Redis, expiring them with the key TTL.
type RedisSessionStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "modpanel:session:"}
}

func (r *RedisSessionStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisSessionStore) LoadSession(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *RedisSessionStore) SaveSession(ctx context.Context, sess *models.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return r.DeleteSession(ctx, sess.ID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(sess.ID), data, ttl).Err()
}

func (r *RedisSessionStore) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
