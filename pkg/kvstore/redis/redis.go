// Package redis implements kvstore.Store on top of Redis.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
)

// Store persists values as plain Redis strings with no expiry.
type Store struct {
	client *goredis.Client
}

// New wraps an existing client.
func New(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set overwrites key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
