package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage keeps cart slots in Redis under cart:<session>:<slot>. Each write
// refreshes the slot's TTL so idle carts eventually expire.
type Storage struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStorage(rdb *redis.Client, ttl time.Duration) *Storage {
	return &Storage{rdb: rdb, ttl: ttl}
}

func (s *Storage) Key(sessionID, slot string) string {
	return fmt.Sprintf("cart:%s:%s", sessionID, slot)
}

func (s *Storage) Get(ctx context.Context, sessionID, slot string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.Key(sessionID, slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Storage) Set(ctx context.Context, sessionID, slot, value string) error {
	return s.rdb.Set(ctx, s.Key(sessionID, slot), value, s.ttl).Err()
}
