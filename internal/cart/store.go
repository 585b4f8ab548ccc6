package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/redis"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// Storage persists raw cart documents per cart token. Load returns found=false
// when nothing is stored.
type Storage interface {
	Load(ctx context.Context, token string) (raw string, found bool, err error)
	Save(ctx context.Context, token, raw string) error
	Delete(ctx context.Context, token string) error
}

// Store rehydrates and persists carts. Unreadable documents rehydrate as an
// empty cart instead of failing.
type Store struct {
	storage Storage
	logg    *logger.Logger
}

func NewStore(storage Storage, logg *logger.Logger) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{storage: storage, logg: logg}, nil
}

// Load never fails on bad data; only a storage read error is returned.
func (s *Store) Load(ctx context.Context, token string) (Cart, error) {
	raw, found, err := s.storage.Load(ctx, token)
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	if !found || raw == "" {
		return Cart{Lines: []types.CartLine{}}, nil
	}

	var lines []types.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.rehydrate.discarded")
		return Cart{Lines: []types.CartLine{}}, nil
	}
	if lines == nil {
		lines = []types.CartLine{}
	}
	return Cart{Lines: lines}, nil
}

// Save persists the full cart.
func (s *Store) Save(ctx context.Context, token string, c Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []types.CartLine{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Save(ctx, token, string(payload)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.storage.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(token string) string
}

// RedisStorage keeps each cart as one JSON string with a sliding TTL.
type RedisStorage struct {
	client redisStore
	ttl    time.Duration
}

func NewRedisStorage(client redisStore, ttl time.Duration) (*RedisStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStorage{client: client, ttl: ttl}, nil
}

func (r *RedisStorage) Load(ctx context.Context, token string) (string, bool, error) {
	raw, err := r.client.Get(ctx, r.client.CartKey(token))
	if err != nil {
		if redis.IsNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return raw, true, nil
}

func (r *RedisStorage) Save(ctx context.Context, token, raw string) error {
	return r.client.Set(ctx, r.client.CartKey(token), raw, r.ttl)
}

func (r *RedisStorage) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.client.CartKey(token))
}
