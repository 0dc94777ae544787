package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"sofia-api/calendar"
	"sofia-api/domain"
)

// Cache wraps a Backend with Redis-backed caching of month reads.
type Cache struct {
	base  Backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base Backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Source() string { return c.base.Source() }

func (c *Cache) FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error) {
	if records, ok := c.loadMonth(ctx, month); ok {
		return records, nil
	}

	records, err := c.base.FetchMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	c.storeMonth(ctx, month, records)
	return records, nil
}

func (c *Cache) GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error) {
	return c.base.GetDay(ctx, iso)
}

func (c *Cache) SaveNotes(ctx context.Context, iso string, notes []domain.Note) error {
	if err := c.base.SaveNotes(ctx, iso, notes); err != nil {
		return err
	}
	c.evict(ctx, iso)
	return nil
}

func (c *Cache) SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error {
	if err := c.base.SaveMoods(ctx, iso, moods); err != nil {
		return err
	}
	c.evict(ctx, iso)
	return nil
}

func (c *Cache) EnsureSchema(ctx context.Context) error {
	if si, ok := c.base.(SchemaInitializer); ok {
		return si.EnsureSchema(ctx)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.base.Ping(ctx)
}

func (c *Cache) Close() error {
	return c.base.Close()
}

func (c *Cache) loadMonth(ctx context.Context, month string) ([]domain.DayRecord, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, monthCacheKey(month)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, monthCacheKey(month)).Err()
		}
		return nil, false
	}
	var records []domain.DayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		_ = c.redis.Del(ctx, monthCacheKey(month)).Err()
		return nil, false
	}
	if records == nil {
		records = []domain.DayRecord{}
	}
	return records, true
}

func (c *Cache) storeMonth(ctx context.Context, month string, records []domain.DayRecord) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, monthCacheKey(month), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, iso string) {
	if c.redis == nil {
		return
	}
	month, err := calendar.MonthOfISO(iso)
	if err != nil {
		return
	}
	_, _ = c.redis.Del(ctx, monthCacheKey(month)).Result()
}

func monthCacheKey(month string) string {
	return "days:" + month
}
