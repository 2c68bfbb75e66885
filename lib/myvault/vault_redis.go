package myvault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisVault[T any] struct {
	client *redis.Client
	prefix string
}

// NewRedisVault keeps secrets in redis under "<prefix><uid>" and lets redis expire them.
func NewRedisVault[T any](client *redis.Client, prefix string) VaultReadWriter[T] {
	return &redisVault[T]{
		client: client,
		prefix: prefix,
	}
}

func (v *redisVault[T]) key(uid string) string {
	return v.prefix + uid
}

func (v *redisVault[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	raw, err := v.client.Get(c, v.key(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching secret %s from redis: %w", uid, err)
	}

	err = json.Unmarshal(raw, &value)
	if err != nil {
		return value, false, fmt.Errorf("error decoding secret %s: %w", uid, err)
	}

	return value, true, nil
}

func (v *redisVault[T]) Put(c context.Context, uid string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding secret %s: %w", uid, err)
	}

	err = v.client.Set(c, v.key(uid), raw, ttl).Err()
	if err != nil {
		return fmt.Errorf("error storing secret %s in redis: %w", uid, err)
	}
	return nil
}

func (v *redisVault[T]) Delete(c context.Context, uid string) error {
	err := v.client.Del(c, v.key(uid)).Err()
	if err != nil {
		return fmt.Errorf("error deleting secret %s from redis: %w", uid, err)
	}
	return nil
}
