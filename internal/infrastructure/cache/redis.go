// Package cache keeps dashboard snapshots in Redis in front of the daily_stats table.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/dashboard"
)

// DefaultTTL bounds how long a snapshot may be served without a recompute.
const DefaultTTL = 10 * time.Minute

// RedisConfig holds the connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DashboardCache implements dashboard.Cache.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ dashboard.Cache = (*DashboardCache)(nil)

// NewDashboardCache connects to Redis. The connection is lazy; call Ping to check it.
func NewDashboardCache(cfg RedisConfig) *DashboardCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &DashboardCache{client: client, ttl: cfg.TTL}
}

func (c *DashboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *DashboardCache) Close() error {
	return c.client.Close()
}

// Key is the Redis key of one owner's snapshot for one date.
func Key(ownerID id.ID, date time.Time) string {
	return fmt.Sprintf("shopledger:dashboard:%s:%s", ownerID, calendar.FormatDate(date))
}

func (c *DashboardCache) Get(ctx context.Context, ownerID id.ID, date time.Time) (*dashboard.Stats, bool, error) {
	val, err := c.client.Get(ctx, Key(ownerID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var cached entry
	if err := json.Unmarshal(val, &cached); err != nil {
		return nil, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	st := cached.Stats
	st.OwnerID = ownerID
	st.Date = date
	return &st, true, nil
}

func (c *DashboardCache) Set(ctx context.Context, s *dashboard.Stats) error {
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(entry{Stats: *s})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, Key(s.OwnerID, s.Date), payload, c.ttl).Err()
}

// entry is the cached form; Stats hides OwnerID from JSON, so the key carries it.
type entry struct {
	Stats dashboard.Stats `json:"stats"`
}
