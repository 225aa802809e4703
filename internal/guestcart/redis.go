package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tarzi-api/internal/domain"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Store backed by Redis. Carts are stored as JSON under
// their session key and expire after ttl of inactivity; every Set refreshes
// the expiry.
func NewRedis(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, key string) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest cart: %w", err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return &cart, nil
}

func (s *redisStore) Set(ctx context.Context, key string, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set guest cart: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}

func cartKey(sessionKey string) string {
	return "guestcart:" + sessionKey
}
