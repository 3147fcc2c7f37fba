package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart:"

type storedLine struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

// RedisStore keeps each session cart as one JSON value with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (port.CartStore, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	var c domain.Cart

	if sessionID == "" {
		return c, fmt.Errorf("sessionID is empty")
	}

	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return c, nil
		}
		return c, fmt.Errorf("client.Get: %w", err)
	}

	var lines []storedLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return c, fmt.Errorf("json.Unmarshal: %w", err)
	}

	for _, line := range lines {
		key, err := domain.ParseCartKey(line.Key)
		if err != nil {
			slog.Debug("dropping cart line",
				"method", "RedisStore.Load",
				"session_id", sessionID,
				"error", err)
			continue
		}
		c.Set(key, line.Quantity)
	}

	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c domain.Cart) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is empty")
	}

	if c.IsEmpty() {
		return s.Clear(ctx, sessionID)
	}

	lines := make([]storedLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, storedLine{Key: line.Key.String(), Quantity: line.Quantity})
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is empty")
	}

	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}
