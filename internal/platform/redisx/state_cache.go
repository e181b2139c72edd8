package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kbrou/chatorder-backend/internal/platform/envutil"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// StateCache keeps the latest per-conversation order state in Redis so the
// webhook hot path can rehydrate without a Postgres round trip. Postgres
// remains the source of truth; a cache miss or error just falls through.
type StateCache interface {
	Get(ctx context.Context, conversationID uuid.UUID, out any) (bool, error)
	Put(ctx context.Context, conversationID uuid.UUID, state any) error
	Invalidate(ctx context.Context, conversationID uuid.UUID) error
	Close() error
}

type stateCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewStateCache(log *logger.Logger) (StateCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := envutil.Str("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.Str("REDIS_PASSWORD", ""),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := strings.TrimSpace(envutil.Str("REDIS_STATE_PREFIX", "convstate"))

	return &stateCache{
		log:    log.With("service", "RedisStateCache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    envutil.DurationSeconds("REDIS_STATE_TTL_SECONDS", 24*time.Hour),
	}, nil
}

func (c *stateCache) key(conversationID uuid.UUID) string {
	return c.prefix + ":" + conversationID.String()
}

func (c *stateCache) Get(ctx context.Context, conversationID uuid.UUID, out any) (bool, error) {
	if conversationID == uuid.Nil {
		return false, fmt.Errorf("missing conversation_id")
	}
	raw, err := c.rdb.Get(ctx, c.key(conversationID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// Corrupt entry: drop it so the DB copy wins next time.
		_ = c.rdb.Del(ctx, c.key(conversationID)).Err()
		return false, nil
	}
	return true, nil
}

func (c *stateCache) Put(ctx context.Context, conversationID uuid.UUID, state any) error {
	if conversationID == uuid.Nil {
		return fmt.Errorf("missing conversation_id")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(conversationID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *stateCache) Invalidate(ctx context.Context, conversationID uuid.UUID) error {
	if conversationID == uuid.Nil {
		return fmt.Errorf("missing conversation_id")
	}
	if err := c.rdb.Del(ctx, c.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *stateCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
