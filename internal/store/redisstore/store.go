// Package redisstore holds short-lived account tokens in redis.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const resetTokenTTL = time.Hour

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }

func resetKey(token string) string { return "pwreset:" + token }

// SetResetToken maps a password-reset token to the account email for one hour.
func (s *Store) SetResetToken(ctx context.Context, token, email string) error {
	return s.rdb.Set(ctx, resetKey(token), email, resetTokenTTL).Err()
}

// GetResetToken returns redis.Nil when the token is expired or unknown.
func (s *Store) GetResetToken(ctx context.Context, token string) (string, error) {
	return s.rdb.Get(ctx, resetKey(token)).Result()
}

func (s *Store) DeleteResetToken(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, resetKey(token)).Err()
}
